package vanilla

import "strings"

func controlID(formID, name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return "lf-" + formID + "-" + trimmed
}

func errorID(formID, name string) string {
	id := controlID(formID, name)
	if id == "" {
		return ""
	}
	return id + "-error"
}

// spanClass maps a grid span onto a column class. Zero means full width.
func spanClass(span int) string {
	switch span {
	case 4:
		return "lf-col-4"
	case 6:
		return "lf-col-6"
	default:
		return "lf-col-12"
	}
}

func classList(classes ...string) string {
	keep := make([]string, 0, len(classes))
	for _, class := range classes {
		if trimmed := strings.TrimSpace(class); trimmed != "" {
			keep = append(keep, trimmed)
		}
	}
	return strings.Join(keep, " ")
}
