package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// AttachmentRefs stores opaque attachment references (storage keys or URLs)
// as a JSON array. The core never stores the attachment bytes themselves.
type AttachmentRefs []string

func (a *AttachmentRefs) Scan(src any) error {
	if src == nil {
		*a = AttachmentRefs{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("AttachmentRefs: unsupported Scan type %T", src)
	}
	if strings.TrimSpace(string(raw)) == "" {
		*a = AttachmentRefs{}
		return nil
	}

	var refs []string
	if err := json.Unmarshal(raw, &refs); err != nil {
		return fmt.Errorf("AttachmentRefs: %w", err)
	}
	*a = refs
	return nil
}

func (a AttachmentRefs) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Clean trims entries and drops blanks and duplicates while keeping order.
func (a AttachmentRefs) Clean() AttachmentRefs {
	out := make(AttachmentRefs, 0, len(a))
	seen := make(map[string]struct{}, len(a))
	for _, ref := range a {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}
