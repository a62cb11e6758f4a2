package normalization

import (
  "strings"
)

const MinPhoneDigits = 10

func ParseInputString(s string) string {
  return strings.TrimSpace(s)
}

func ParseInputStringPtr(s *string) *string {
  if s == nil {
    return nil
  }
  v := strings.TrimSpace(*s)
  return &v
}

// IsValidPhoneNumber reports whether phone is all ASCII digits and at least MinPhoneDigits long.
func IsValidPhoneNumber(phone string) bool {
  if len(phone) < MinPhoneDigits {
    return false
  }
  for i := 0; i < len(phone); i++ {
    if phone[i] < '0' || phone[i] > '9' {
      return false
    }
  }
  return true
}

// ToInternational converts a digits-only phone number to the form the SMS provider expects.
// Ten digit numbers are treated as national numbers and get the default country code,
// anything else is assumed to already carry a country code and only gets a leading "+".
func ToInternational(phone, countryCode string) string {
  phone = strings.TrimPrefix(ParseInputString(phone), "+")
  if len(phone) == MinPhoneDigits {
    return "+" + strings.TrimPrefix(countryCode, "+") + phone
  }
  return "+" + phone
}
