package classifier

import (
	"testing"

	"clipmemo-sync-server/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.Category
		minConf float64
		maxConf float64
	}{
		{"email", "hong@example.com", domain.CategoryEmail, 0.5, 1},
		{"email with plus tag", "user+tag@mail.co.kr", domain.CategoryEmail, 0.5, 1},
		{"https url", "https://example.com/path?q=1", domain.CategoryURL, 0.5, 1},
		{"bare www url", "www.example.com", domain.CategoryURL, 0.5, 1},
		{"ipv4", "192.168.0.1", domain.CategoryIPAddress, 0.5, 1},
		{"credit card dashed", "1234-5678-9012-3456", domain.CategoryCreditCard, 0.5, 1},
		{"credit card luhn valid", "4539-1488-0343-6467", domain.CategoryCreditCard, 0.9, 1},
		{"credit card plain digits", "4539148803436467", domain.CategoryCreditCard, 0.5, 1},
		{"resident number", "900101-1234567", domain.CategoryTaxID, 0.5, 1},
		{"passport", "M12345678", domain.CategoryPassportNumber, 0.5, 1},
		{"mobile phone", "010-1234-5678", domain.CategoryPhone, 0.5, 1},
		{"mobile phone no dashes", "01012345678", domain.CategoryPhone, 0.5, 1},
		{"seoul landline", "02-312-4567", domain.CategoryPhone, 0.5, 1},
		{"bank account", "110-234-567890", domain.CategoryBankAccount, 0.5, 1},
		{"tracking number", "123456789012", domain.CategoryTrackingNumber, 0.5, 1},
		{"verification sms", "인증번호 483920", domain.CategoryVerificationCode, 0.5, 1},
		{"bare six digit code", "483920", domain.CategoryVerificationCode, 0.3, 1},
		{"postal code", "06236", domain.CategoryPostalCode, 0.5, 1},
		{"birth date", "1990-01-01", domain.CategoryBirthDate, 0.5, 1},
		{"future date", "2026-03-15", domain.CategoryDate, 0.5, 1},
		{"korean date", "1988년 7월 16일", domain.CategoryBirthDate, 0.5, 1},
		{"korean address", "서울특별시 강남구 테헤란로 123", domain.CategoryAddress, 0.5, 1},
		{"english address", "123 Main Street", domain.CategoryAddress, 0.5, 1},
		{"korean name", "김철수", domain.CategoryName, 0.3, 1},
		{"plain number", "1,234,567", domain.CategoryNumber, 0.1, 1},
		{"plain text", "오늘 회의록 정리해서 공유 부탁드립니다", domain.CategoryText, 0, 0},
		{"english sentence", "please review the attached file", domain.CategoryText, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.input)
			if got.Category != tt.want {
				t.Errorf("Classify(%q) category = %s, want %s (conf %.2f)", tt.input, got.Category, tt.want, got.Confidence)
			}
			if got.Confidence < tt.minConf || got.Confidence > tt.maxConf {
				t.Errorf("Classify(%q) confidence = %.2f, want in [%.2f, %.2f]", tt.input, got.Confidence, tt.minConf, tt.maxConf)
			}
		})
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t "} {
		got := Classify(input)
		if got.Category != domain.CategoryText {
			t.Errorf("Classify(%q) category = %s, want text", input, got.Category)
		}
		if got.Confidence != 0 {
			t.Errorf("Classify(%q) confidence = %.2f, want 0", input, got.Confidence)
		}
	}
}

// Classification is total: every input yields a known category and a
// confidence inside [0,1].
func TestClassifyTotality(t *testing.T) {
	inputs := []string{
		"a", "@", "{", "}", "123", "....", "----",
		"010", "hong@", "@example.com", "https://",
		"서울", "1234-5678-9012-3456-7890",
		"0000-00-00", "99999999999999999999",
	}
	for _, input := range inputs {
		got := Classify(input)
		if !got.Category.IsValid() {
			t.Errorf("Classify(%q) returned unknown category %q", input, got.Category)
		}
		if got.Confidence < 0 || got.Confidence > 1 {
			t.Errorf("Classify(%q) confidence %.2f out of range", input, got.Confidence)
		}
	}
}

// A 16-digit string must resolve to credit card, not tracking number: the
// precedence list puts the more structured pattern first.
func TestClassifyPrecedence(t *testing.T) {
	got := Classify("4539148803436467")
	if got.Category != domain.CategoryCreditCard {
		t.Errorf("16-digit string classified as %s, want credit_card", got.Category)
	}

	// A mobile number also matches the bank account shape; phone must win.
	got = Classify("010-1234-5678")
	if got.Category != domain.CategoryPhone {
		t.Errorf("mobile number classified as %s, want phone", got.Category)
	}
}

func TestSecureByDefault(t *testing.T) {
	secure := map[domain.Category]bool{
		domain.CategoryCreditCard:     true,
		domain.CategoryBankAccount:    true,
		domain.CategoryPassportNumber: true,
		domain.CategoryTaxID:          true,
	}

	for _, cat := range domain.AllCategories() {
		want := secure[cat]
		if got := cat.SecureByDefault(); got != want {
			t.Errorf("SecureByDefault(%s) = %v, want %v", cat, got, want)
		}
	}
}

func TestCategoryMetadata(t *testing.T) {
	for _, cat := range domain.AllCategories() {
		if cat.Icon() == "" {
			t.Errorf("category %s has no icon", cat)
		}
		if cat.Color() == "" {
			t.Errorf("category %s has no color", cat)
		}
	}
}
