package domain

// Category is the closed set of semantic types the classifier can assign to
// copied text. CategoryText is the fallback for anything unrecognized.
type Category string

const (
	CategoryText             Category = "text"
	CategoryEmail            Category = "email"
	CategoryURL              Category = "url"
	CategoryIPAddress        Category = "ip_address"
	CategoryCreditCard       Category = "credit_card"
	CategoryTaxID            Category = "tax_id"
	CategoryPassportNumber   Category = "passport_number"
	CategoryPhone            Category = "phone"
	CategoryBankAccount      Category = "bank_account"
	CategoryTrackingNumber   Category = "tracking_number"
	CategoryVerificationCode Category = "verification_code"
	CategoryPostalCode       Category = "postal_code"
	CategoryBirthDate        Category = "birth_date"
	CategoryDate             Category = "date"
	CategoryAddress          Category = "address"
	CategoryName             Category = "name"
	CategoryNumber           Category = "number"
)

// AllCategories lists every category in classifier precedence order. The
// order here is the documented tie-break order: structured patterns first,
// loose heuristics last.
func AllCategories() []Category {
	return []Category{
		CategoryEmail,
		CategoryURL,
		CategoryIPAddress,
		CategoryCreditCard,
		CategoryTaxID,
		CategoryPassportNumber,
		CategoryPhone,
		CategoryBankAccount,
		CategoryTrackingNumber,
		CategoryVerificationCode,
		CategoryPostalCode,
		CategoryBirthDate,
		CategoryDate,
		CategoryAddress,
		CategoryName,
		CategoryNumber,
		CategoryText,
	}
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryText, CategoryEmail, CategoryURL, CategoryIPAddress,
		CategoryCreditCard, CategoryTaxID, CategoryPassportNumber,
		CategoryPhone, CategoryBankAccount, CategoryTrackingNumber,
		CategoryVerificationCode, CategoryPostalCode, CategoryBirthDate,
		CategoryDate, CategoryAddress, CategoryName, CategoryNumber:
		return true
	}
	return false
}

// SecureByDefault reports whether memos created from this category should
// start out secure (biometric-gated on the client). The set is fixed:
// card numbers, bank accounts, passport numbers and tax IDs.
func (c Category) SecureByDefault() bool {
	switch c {
	case CategoryCreditCard, CategoryBankAccount, CategoryPassportNumber, CategoryTaxID:
		return true
	case CategoryText, CategoryEmail, CategoryURL, CategoryIPAddress,
		CategoryPhone, CategoryTrackingNumber, CategoryVerificationCode,
		CategoryPostalCode, CategoryBirthDate, CategoryDate,
		CategoryAddress, CategoryName, CategoryNumber:
		return false
	}
	return false
}

// Icon returns the symbolic icon name clients render for the category.
func (c Category) Icon() string {
	switch c {
	case CategoryEmail:
		return "envelope"
	case CategoryURL:
		return "link"
	case CategoryIPAddress:
		return "network"
	case CategoryCreditCard:
		return "creditcard"
	case CategoryTaxID:
		return "person.text.rectangle"
	case CategoryPassportNumber:
		return "airplane"
	case CategoryPhone:
		return "phone"
	case CategoryBankAccount:
		return "banknote"
	case CategoryTrackingNumber:
		return "shippingbox"
	case CategoryVerificationCode:
		return "key"
	case CategoryPostalCode:
		return "mappin"
	case CategoryBirthDate:
		return "birthday.cake"
	case CategoryDate:
		return "calendar"
	case CategoryAddress:
		return "house"
	case CategoryName:
		return "person"
	case CategoryNumber:
		return "number"
	case CategoryText:
		return "doc.text"
	}
	return "doc.text"
}

// Color returns the display color name clients use for the category badge.
func (c Category) Color() string {
	switch c {
	case CategoryEmail:
		return "blue"
	case CategoryURL:
		return "indigo"
	case CategoryIPAddress:
		return "teal"
	case CategoryCreditCard:
		return "red"
	case CategoryTaxID:
		return "red"
	case CategoryPassportNumber:
		return "orange"
	case CategoryPhone:
		return "green"
	case CategoryBankAccount:
		return "red"
	case CategoryTrackingNumber:
		return "brown"
	case CategoryVerificationCode:
		return "purple"
	case CategoryPostalCode:
		return "mint"
	case CategoryBirthDate:
		return "pink"
	case CategoryDate:
		return "pink"
	case CategoryAddress:
		return "yellow"
	case CategoryName:
		return "cyan"
	case CategoryNumber:
		return "gray"
	case CategoryText:
		return "gray"
	}
	return "gray"
}
