package mutate

import "github.com/jra3/orgctl/internal/section"

// SetProperty implements SPEC_FULL.md §4.E.4: case-sensitive key match
// scoped to the headline's own property drawer. On miss, a new line is
// inserted preserving existing drawer order; the drawer is created if
// absent.
func SetProperty(content string, pos int, key, value string) (string, error) {
	seg, err := section.Split(content, pos)
	if err != nil {
		return "", err
	}
	return setProperty(content, seg, key, value), nil
}

// RemoveProperty implements SPEC_FULL.md §4.E.4: deletes the matching
// line; if the drawer becomes empty, the drawer itself is deleted.
func RemoveProperty(content string, pos int, key string) (string, error) {
	seg, err := section.Split(content, pos)
	if err != nil {
		return "", err
	}
	return removeProperty(content, seg, key), nil
}
