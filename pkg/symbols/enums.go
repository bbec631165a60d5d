package symbols

// KnownEnums maps enum name → member → value for enums whose declaring file
// is usually not part of a plugin's project (the host's OptionType).
type KnownEnums map[string]map[string]float64

// DefaultKnownEnums returns the host OptionType enum.
func DefaultKnownEnums() KnownEnums {
	return KnownEnums{
		"OptionType": {
			"STRING":    0,
			"NUMBER":    1,
			"BIGINT":    2,
			"BOOLEAN":   3,
			"SELECT":    4,
			"SLIDER":    5,
			"COMPONENT": 6,
			"CUSTOM":    7,
		},
	}
}

// Lookup returns the value of enum.member.
func (k KnownEnums) Lookup(enum, member string) (float64, bool) {
	members, ok := k[enum]
	if !ok {
		return 0, false
	}
	v, ok := members[member]
	return v, ok
}

// MemberName returns the member of enum with the given value.
func (k KnownEnums) MemberName(enum string, value float64) (string, bool) {
	for name, v := range k[enum] {
		if v == value {
			return name, true
		}
	}
	return "", false
}
