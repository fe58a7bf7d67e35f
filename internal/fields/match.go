package fields

import "strings"

// Match finds the value for d in data:
//
//  1. an exact key equal to name, id, placeholder or label (in that order)
//  2. the first key whose lowercase text contains the semantic type
//  3. for each identifier, the first key with a case-insensitive substring
//     relation in either direction
//
// ok is false when nothing matches and the field should be left alone.
func Match(d Descriptor, data *DataMap) (value string, ok bool) {
	if data.Len() == 0 {
		return "", false
	}
	ids := d.Identifiers()

	for _, id := range ids {
		if v, found := data.Get(id); found {
			return v, true
		}
	}

	keys := data.Keys()
	if d.FieldType != "" {
		for _, k := range keys {
			if strings.Contains(strings.ToLower(k), string(d.FieldType)) {
				v, _ := data.Get(k)
				return v, true
			}
		}
	}

	for _, id := range ids {
		lid := strings.ToLower(id)
		for _, k := range keys {
			lk := strings.ToLower(k)
			if strings.Contains(lk, lid) || strings.Contains(lid, lk) {
				v, _ := data.Get(k)
				return v, true
			}
		}
	}

	return "", false
}
