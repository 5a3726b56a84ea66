// Package i18n holds the user-facing fallback messages shown when the
// collaborator gives no detail, plus client-side validation messages.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// BaseLocale is used when a requested locale has no catalog.
	BaseLocale = "en-US"
)

// Message keys.
const (
	MsgRemoteGeneric     = "error.remote.generic"
	MsgAuthFailed        = "error.auth.failed"
	MsgAuthExpired       = "error.auth.expired"
	MsgNoSession         = "error.auth.no_session"
	MsgQuotaExceeded     = "error.storage.quota"
	MsgFieldRequired     = "validation.required"
	MsgEmailInvalid      = "validation.email_invalid"
	MsgPasswordTooShort  = "validation.password_short"
	MsgPasswordMismatch  = "validation.password_mismatch"
	MsgSubdomainInvalid  = "validation.subdomain_invalid"
	MsgSubdomainReserved = "validation.subdomain_reserved"
	MsgTermsRequired     = "validation.terms_required"
	MsgCartAdded         = "cart.added"
	MsgCartDuplicate     = "cart.duplicate"
	MsgCurrencyKRW       = "currency.krw"
)

var supported = []language.Tag{
	language.MustParse("en-US"),
	language.MustParse("ko-KR"),
}

var matcher = language.NewMatcher(supported)

var catalogs = map[string]map[string]string{
	"en-US": {
		MsgRemoteGeneric:     "An error occurred",
		MsgAuthFailed:        "Login failed",
		MsgAuthExpired:       "Authentication failed. Please login again.",
		MsgNoSession:         "No authentication token found",
		MsgQuotaExceeded:     "Local storage is full",
		MsgFieldRequired:     "%s is required",
		MsgEmailInvalid:      "Invalid email format",
		MsgPasswordTooShort:  "Password must be at least %d characters",
		MsgPasswordMismatch:  "Passwords do not match",
		MsgSubdomainInvalid:  "Subdomain may only contain lowercase letters, digits and hyphens (%d-%d characters)",
		MsgSubdomainReserved: "Subdomain %q is reserved",
		MsgTermsRequired:     "Please agree to the terms of service",
		MsgCartAdded:         "Added to cart",
		MsgCartDuplicate:     "This product is already in your cart",
		MsgCurrencyKRW:       "KRW %d",
	},
	"ko-KR": {
		MsgRemoteGeneric:     "오류가 발생했습니다",
		MsgAuthFailed:        "로그인에 실패했습니다",
		MsgAuthExpired:       "인증에 실패했습니다. 다시 로그인해주세요.",
		MsgNoSession:         "인증 토큰이 없습니다",
		MsgQuotaExceeded:     "로컬 저장 공간이 가득 찼습니다",
		MsgFieldRequired:     "%s 항목은 필수입니다",
		MsgEmailInvalid:      "올바른 이메일 형식이 아닙니다",
		MsgPasswordTooShort:  "비밀번호는 최소 %d자 이상이어야 합니다",
		MsgPasswordMismatch:  "비밀번호가 일치하지 않습니다",
		MsgSubdomainInvalid:  "서브도메인은 영문 소문자, 숫자, 하이픈만 사용할 수 있습니다 (%d-%d자)",
		MsgSubdomainReserved: "%q 서브도메인은 사용할 수 없습니다",
		MsgTermsRequired:     "이용약관에 동의해주세요",
		MsgCartAdded:         "장바구니에 담겼습니다!",
		MsgCartDuplicate:     "이미 장바구니에 담긴 상품입니다!",
		MsgCurrencyKRW:       "%d원",
	},
}

func init() {
	for locale, messages := range catalogs {
		tag := language.MustParse(locale)
		tags := []language.Tag{tag}
		if base, _ := tag.Base(); base.String() != "und" {
			tags = append(tags, language.MustParse(base.String()))
		}
		for key, value := range messages {
			for _, registerTag := range tags {
				_ = message.SetString(registerTag, key, value)
			}
		}
	}
}

// Resolve returns the supported locale closest to the requested one,
// falling back to BaseLocale.
func Resolve(locale string) string {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		return BaseLocale
	}
	tag, err := language.Parse(requested)
	if err != nil {
		return BaseLocale
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return BaseLocale
	}
	return supported[index].String()
}

// Printer returns a message printer for the resolved locale.
func Printer(locale string) *message.Printer {
	return message.NewPrinter(language.MustParse(Resolve(locale)))
}

// Text renders the message for key in locale.
func Text(locale, key string, args ...any) string {
	return Printer(locale).Sprintf(key, args...)
}
