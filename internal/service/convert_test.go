package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/giftcert/internal/models"
)

func TestToCertificateDTO_SortsTagsAndNeverNil(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	dto := ToCertificateDTO(models.Certificate{ID: 1, Name: "n", CreateDate: at, LastUpdateDate: at})
	assert.NotNil(t, dto.Tags)
	assert.Empty(t, dto.Tags)
	assert.Equal(t, time.UTC, dto.CreateDate.Location())

	dto = ToCertificateDTO(models.Certificate{Tags: []models.Tag{{ID: 3, Name: "b"}, {ID: 2, Name: "a"}, {ID: 1, Name: "b"}}})
	assert.Equal(t, []TagDTO{{2, "a"}, {1, "b"}, {3, "b"}}, dto.Tags)
}

func TestFromCertificateInput(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	c := FromCertificateInput(CertificateInput{
		Name:     "  Spa  ",
		Price:    10,
		Duration: 5,
		Tags:     []string{" wellness", "relax "},
	}, now)
	assert.Equal(t, "Spa", c.Name)
	assert.Equal(t, now, c.CreateDate)
	assert.Equal(t, now, c.LastUpdateDate)
	assert.Equal(t, []string{"wellness", "relax"}, c.TagNames())
	assert.Zero(t, c.ID)
}

func TestFromUserInput_LowercasesEmail(t *testing.T) {
	u := FromUserInput(UserInput{Name: " Ann ", Email: " Ann@Example.COM"})
	assert.Equal(t, models.User{Name: "Ann", Email: "ann@example.com"}, u)
}

func TestInputValidation(t *testing.T) {
	ok := CertificateInput{Name: "Spa", Price: 0, Duration: 1, Tags: []string{"a"}}
	require.NoError(t, ok.Validate())

	for name, in := range map[string]CertificateInput{
		"missing name":      {Duration: 1},
		"blank name":        {Name: "   ", Duration: 1},
		"negative price":    {Name: "x", Price: -1, Duration: 1},
		"zero duration":     {Name: "x"},
		"blank tag":         {Name: "x", Duration: 1, Tags: []string{"  "}},
		"empty tag":         {Name: "x", Duration: 1, Tags: []string{""}},
	} {
		assert.Error(t, in.Validate(), name)
	}

	assert.NoError(t, UserInput{Name: "Ann", Email: "ann@example.com"}.Validate())
	assert.Error(t, UserInput{Name: "Ann", Email: "not-an-email"}.Validate())
	assert.Error(t, TagInput{Name: " "}.Validate())
	assert.Error(t, OrderInput{}.Validate())
	assert.NoError(t, OrderInput{CertificateID: 3}.Validate())
}
