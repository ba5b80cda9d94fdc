package mutate

import (
	"github.com/google/uuid"

	"github.com/jra3/orgctl/internal/section"
)

// GetOrCreateID implements org-roam's "org-id-get-create" behavior: if the
// headline at pos already carries an ID property, it is returned
// unchanged; otherwise a new random UUID is stamped into its property
// drawer (creating the drawer if absent) and both the updated content and
// the new ID are returned.
func GetOrCreateID(content string, pos int) (newContent string, id string, err error) {
	seg, err := section.Split(content, pos)
	if err != nil {
		return "", "", err
	}
	for _, p := range section.PropertyLines(seg.PropertyDrawer) {
		if p.Key == "ID" {
			return content, p.Value, nil
		}
	}
	id = uuid.NewString()
	updated := setProperty(content, seg, "ID", id)
	return updated, id, nil
}
