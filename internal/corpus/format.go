// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package corpus

import "github.com/taibuivan/lexica/pkg/slice"

// formatAllowedValues shapes allow-list entries for autocomplete widgets.
// Morphology codes are labelled with their readable form.
func formatAllowedValues(allowedType AllowedType, values []AllowedValue) []Suggestion {
	labelled := slice.Filter(values, func(value AllowedValue) bool { return value.Label != "" })

	return slice.Map(labelled, func(value AllowedValue) Suggestion {
		label := value.Label
		if allowedType == AllowedMorph && value.Readable != "" {
			label = value.Readable
		}
		return Suggestion{Value: value.Label, Label: label}
	})
}

func formatTokenValues(values []string) []Suggestion {
	present := slice.Filter(values, func(value string) bool { return value != "" })

	return slice.Map(present, func(value string) Suggestion {
		return Suggestion{Value: value, Label: value}
	})
}
