package mcpserver

// SearchGuide describes how the search_certificates tool interprets its
// arguments. It is served as a resource and through the search tool's
// description.
const SearchGuide = `# Certificate Search Guide

search_certificates combines every supplied criterion with AND. Omitted
criteria do not restrict the result.

## Criteria

- **name**: case-insensitive substring of the certificate name.
- **description**: case-insensitive substring of the description.
- **tags**: list of exact tag names. A certificate matches only when it
  carries *every* listed tag. A tag name that does not exist matches nothing.
- **sort**: one of ` + "`name`, `date` (creation date), `price`" + `.
- **order**: ` + "`asc` (default) or `desc`" + `; only valid together with sort.
- **page**: 0-based page number (default 0).
- **size**: page size, 1 to the configured maximum (default from config).

Results with equal sort keys are ordered by id, so paging is stable.

## Result

A JSON object with "items" (certificates with their tags), "total" (rows
matching the criteria across all pages), "page", "size" and "total_pages".
`
