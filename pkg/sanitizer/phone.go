package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const DefaultRegion = "PH"

// NormalizePhone formats phone as E.164. National numbers are read in the
// given region. Numbers that cannot be parsed are returned trimmed so that
// filters still match what the client stored.
func NormalizePhone(phone, region string) string {
	phone = TrimAndNormalize(phone)
	if phone == "" {
		return ""
	}
	if region == "" {
		region = DefaultRegion
	}

	parsed, err := phonenumbers.Parse(phone, strings.ToUpper(region))
	if err != nil || !phonenumbers.IsPossibleNumber(parsed) {
		return phone
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}
