package sanitizer

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var rePhoneChars = regexp.MustCompile(`^\+?[0-9 ().\-]+$`)

// SanitizePhone formats phone as E.164, resolving national numbers against
// defaultRegion. Input that does not look like a phone number is returned
// trimmed so the e164 validator reports it.
func SanitizePhone(phone, defaultRegion string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" || !rePhoneChars.MatchString(phone) {
		return phone
	}

	parsed, err := phonenumbers.Parse(phone, defaultRegion)
	if err != nil {
		return phone
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}
