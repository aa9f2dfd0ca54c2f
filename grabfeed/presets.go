package grabfeed

import "sort"

// UserTypes lists the help-center audiences the dashboard offers
var UserTypes = map[string]string{
	"passenger":       "Passenger",
	"driver":          "Driver",
	"merchant":        "Merchant",
	"moveitpassenger": "MOVE IT Passenger",
	"moveitdriver":    "MOVE IT Driver",
}

// Locales lists the help-center language locales the dashboard offers
var Locales = []string{
	"en-sg", "en-my", "en-ph", "en-th", "en-vn", "en-id", "en-mm", "en-kh",
	"ms-my", "th-th", "vi-vn", "id-id", "zh-sg", "my-mm", "km-kh", "fil-ph",
}

// KnownUserType reports whether userType is one of UserTypes
func KnownUserType(userType string) bool {
	_, ok := UserTypes[userType]
	return ok
}

// SortedUserTypes returns the user type keys in a stable order
func SortedUserTypes() []string {
	names := make([]string, 0, len(UserTypes))
	for name := range UserTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
