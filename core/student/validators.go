package student

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/longlg88/wallyhub/core"
)

var (
	// password policy
	pwdMinLen     = 6
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to your name or student id"
)

func init() {
	core.Validate.RegisterStructValidation(studentStructValidation, NewStudent{})
	core.Validate.RegisterStructValidation(studentStructValidation, JoinBoard{})
	core.RegisterCustomTranslation(pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(pwdAttrSimTag, pwdAttrSimText)
}

// studentStructValidation does struct level validation on NewStudent and
// JoinBoard structs. An empty JoinBoard password means an anonymous join and
// skips the policy.
func studentStructValidation(sl validator.StructLevel) {
	switch s := sl.Current().Interface().(type) {
	case NewStudent:
		validatePassword(s.Password, s.Name, s.ExternalID, sl)
	case JoinBoard:
		if s.Password != "" {
			validatePassword(s.Password, s.Name, s.ExternalID, sl)
		}
	}
}

// validatePassword applies the password policy:
// - minLen: 6
// - no whitespace
// - no similarity to student attributes
func validatePassword(pwd, name, externalID string, sl validator.StructLevel) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	if len(pwd) < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
	}

	getRatio := func(pass, attr string) float64 {
		if attr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(attr, "")).QuickRatio()
	}
	if getRatio(pwd, name) >= pwdMaxSim || getRatio(pwd, externalID) >= pwdMaxSim {
		reportErr(pwdAttrSimTag)
	}
}
