// Package classifier assigns a semantic category and a confidence score to
// arbitrary copied text. It is a rule battery: every rule is tried, each
// match yields a candidate (category, confidence), and the highest
// confidence wins. Rules run in the precedence order documented by
// domain.AllCategories, so on equal confidence the more structured pattern
// wins. Classification is pure and deterministic; unclassifiable input
// falls back to (text, 0).
package classifier

import (
	"regexp"
	"strings"

	"clipmemo-sync-server/internal/domain"
)

// Result is one classification outcome. Confidence is in [0,1] and is only
// meaningful as a relative ranking within a single Classify call.
type Result struct {
	Category   domain.Category `json:"category"`
	Confidence float64         `json:"confidence"`
}

type rule struct {
	category domain.Category
	score    func(text string) float64
}

var (
	emailRe    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	urlRe      = regexp.MustCompile(`^(https?|ftp)://\S+$`)
	wwwRe      = regexp.MustCompile(`^www\.\S+\.\S+$`)
	ipv4Re     = regexp.MustCompile(`^(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})$`)
	cardRe     = regexp.MustCompile(`^\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}$`)
	amexRe     = regexp.MustCompile(`^\d{4}[- ]?\d{6}[- ]?\d{5}$`)
	taxIDRe    = regexp.MustCompile(`^\d{6}-[1-4]\d{6}$`)
	passportRe = regexp.MustCompile(`^[A-Z]{1,2}\d{7,8}$`)
	mobileRe   = regexp.MustCompile(`^(\+82[- ]?)?01[016789][- ]?\d{3,4}[- ]?\d{4}$`)
	landlineRe = regexp.MustCompile(`^0\d{1,2}[- ]?\d{3,4}[- ]?\d{4}$`)
	accountRe  = regexp.MustCompile(`^\d{2,6}-\d{2,6}-\d{2,8}$`)
	trackingRe = regexp.MustCompile(`^\d{10,14}$`)
	codeDigits = regexp.MustCompile(`\b\d{4,8}\b`)
	codeHintRe = regexp.MustCompile(`인증|verification|code|OTP|otp`)
	bareCodeRe = regexp.MustCompile(`^\d{6}$`)
	postalRe   = regexp.MustCompile(`^\d{5}$`)
	dateRe     = regexp.MustCompile(`^(\d{4})[-./](\d{1,2})[-./](\d{1,2})$`)
	koDateRe   = regexp.MustCompile(`^(\d{4})년 ?(\d{1,2})월 ?(\d{1,2})일$`)
	koAddrRe   = regexp.MustCompile(`(특별시|광역시|[가-힣]+[시군구] |[가-힣]+(로|길) ?\d+|[가-힣]+동 ?\d*호?)`)
	enAddrRe   = regexp.MustCompile(`\b(St\.?|Street|Ave\.?|Avenue|Rd\.?|Road|Blvd\.?|Boulevard)\b`)
	hangulName = regexp.MustCompile(`^[가-힣]{2,4}$`)
	numericRe  = regexp.MustCompile(`^[\d,.\- ]*\d[\d,.\- ]*$`)
	digitRe    = regexp.MustCompile(`\d`)
)

// rules is the fixed precedence list. Structured identifiers come first so
// that, for example, a 16-digit string is a credit card before it is a
// tracking number.
var rules = []rule{
	{domain.CategoryEmail, scoreEmail},
	{domain.CategoryURL, scoreURL},
	{domain.CategoryIPAddress, scoreIPAddress},
	{domain.CategoryCreditCard, scoreCreditCard},
	{domain.CategoryTaxID, scoreTaxID},
	{domain.CategoryPassportNumber, scorePassport},
	{domain.CategoryPhone, scorePhone},
	{domain.CategoryBankAccount, scoreBankAccount},
	{domain.CategoryTrackingNumber, scoreTracking},
	{domain.CategoryVerificationCode, scoreVerificationCode},
	{domain.CategoryPostalCode, scorePostalCode},
	{domain.CategoryBirthDate, scoreBirthDate},
	{domain.CategoryDate, scoreDate},
	{domain.CategoryAddress, scoreAddress},
	{domain.CategoryName, scoreName},
	{domain.CategoryNumber, scoreNumber},
}

// Classify maps text to its best-fitting category. Empty or whitespace-only
// input returns (text, 0). The best candidate wins; an earlier rule keeps
// its claim on a tie.
func Classify(text string) Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Result{Category: domain.CategoryText, Confidence: 0}
	}

	best := Result{Category: domain.CategoryText, Confidence: 0}
	for _, r := range rules {
		if score := r.score(trimmed); score > best.Confidence {
			best = Result{Category: r.category, Confidence: score}
		}
	}
	return best
}

func scoreEmail(text string) float64 {
	if emailRe.MatchString(text) {
		return 0.95
	}
	return 0
}

func scoreURL(text string) float64 {
	if urlRe.MatchString(text) {
		return 0.95
	}
	if wwwRe.MatchString(text) {
		return 0.8
	}
	return 0
}

func scoreIPAddress(text string) float64 {
	m := ipv4Re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	for _, octet := range m[1:] {
		if len(octet) > 1 && octet[0] == '0' {
			return 0
		}
		n := 0
		for _, c := range octet {
			n = n*10 + int(c-'0')
		}
		if n > 255 {
			return 0
		}
	}
	return 0.9
}

func scoreCreditCard(text string) float64 {
	if !cardRe.MatchString(text) && !amexRe.MatchString(text) {
		return 0
	}
	if luhnValid(digitsOf(text)) {
		return 0.95
	}
	// Right shape, bad checksum. Still more likely a card than anything else.
	return 0.6
}

func scoreTaxID(text string) float64 {
	if taxIDRe.MatchString(text) {
		return 0.95
	}
	return 0
}

func scorePassport(text string) float64 {
	if passportRe.MatchString(text) {
		return 0.85
	}
	return 0
}

func scorePhone(text string) float64 {
	if mobileRe.MatchString(text) {
		return 0.95
	}
	if landlineRe.MatchString(text) {
		return 0.8
	}
	return 0
}

func scoreBankAccount(text string) float64 {
	if !accountRe.MatchString(text) {
		return 0
	}
	n := len(digitsOf(text))
	if n < 10 || n > 14 {
		return 0
	}
	return 0.7
}

func scoreTracking(text string) float64 {
	if trackingRe.MatchString(text) {
		return 0.6
	}
	return 0
}

func scoreVerificationCode(text string) float64 {
	if codeHintRe.MatchString(text) && codeDigits.MatchString(text) {
		return 0.85
	}
	if bareCodeRe.MatchString(text) {
		return 0.5
	}
	return 0
}

func scorePostalCode(text string) float64 {
	if postalRe.MatchString(text) {
		return 0.6
	}
	return 0
}

// birthCutoffYear separates birth dates from plain dates: a plausible date
// whose year falls in [1900, birthCutoffYear] is treated as a birth date.
const birthCutoffYear = 2015

func scoreBirthDate(text string) float64 {
	y, ok := plausibleDate(text)
	if !ok {
		return 0
	}
	if y >= 1900 && y <= birthCutoffYear {
		return 0.7
	}
	return 0
}

func scoreDate(text string) float64 {
	if _, ok := plausibleDate(text); ok {
		return 0.65
	}
	return 0
}

func scoreAddress(text string) float64 {
	if koAddrRe.MatchString(text) && digitRe.MatchString(text) {
		return 0.65
	}
	if enAddrRe.MatchString(text) && digitRe.MatchString(text) {
		return 0.6
	}
	return 0
}

func scoreName(text string) float64 {
	if hangulName.MatchString(text) {
		return 0.5
	}
	return 0
}

func scoreNumber(text string) float64 {
	if numericRe.MatchString(text) {
		return 0.3
	}
	return 0
}

// plausibleDate reports whether text is a YYYY-MM-DD style or Korean
// YYYY년 MM월 DD일 date with in-range month and day, returning the year.
func plausibleDate(text string) (int, bool) {
	m := dateRe.FindStringSubmatch(text)
	if m == nil {
		m = koDateRe.FindStringSubmatch(text)
	}
	if m == nil {
		return 0, false
	}
	year := atoi(m[1])
	month := atoi(m[2])
	day := atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, false
	}
	return year, true
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

func digitsOf(text string) string {
	var b strings.Builder
	for _, c := range text {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func luhnValid(digits string) bool {
	if len(digits) < 12 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
