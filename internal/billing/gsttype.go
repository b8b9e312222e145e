package billing

import "finbook/internal/domain"

// stateNames maps GST state codes to state names, per the GSTIN numbering
// scheme. Used for place-of-supply display and code validation.
var stateNames = map[string]string{
	"01": "Jammu and Kashmir",
	"02": "Himachal Pradesh",
	"03": "Punjab",
	"04": "Chandigarh",
	"05": "Uttarakhand",
	"06": "Haryana",
	"07": "Delhi",
	"08": "Rajasthan",
	"09": "Uttar Pradesh",
	"10": "Bihar",
	"11": "Sikkim",
	"12": "Arunachal Pradesh",
	"13": "Nagaland",
	"14": "Manipur",
	"15": "Mizoram",
	"16": "Tripura",
	"17": "Meghalaya",
	"18": "Assam",
	"19": "West Bengal",
	"20": "Jharkhand",
	"21": "Odisha",
	"22": "Chhattisgarh",
	"23": "Madhya Pradesh",
	"24": "Gujarat",
	"26": "Dadra and Nagar Haveli and Daman and Diu",
	"27": "Maharashtra",
	"29": "Karnataka",
	"30": "Goa",
	"31": "Lakshadweep",
	"32": "Kerala",
	"33": "Tamil Nadu",
	"34": "Puducherry",
	"35": "Andaman and Nicobar Islands",
	"36": "Telangana",
	"37": "Andhra Pradesh",
	"38": "Ladakh",
}

// ValidStateCode reports whether the given GST state code is known.
func ValidStateCode(code string) bool {
	_, ok := stateNames[code]
	return ok
}

// StateName returns the state name for a GST state code, or "" if unknown.
func StateName(code string) string {
	return stateNames[code]
}

// ResolveGSTType derives the GST split from seller and buyer state codes:
// same state means CGST+SGST, different states mean IGST. The second return
// is false when either code is unknown, in which case the caller keeps the
// current (possibly manually overridden) value.
func ResolveGSTType(sellerState, buyerState string) (domain.GSTType, bool) {
	if !ValidStateCode(sellerState) || !ValidStateCode(buyerState) {
		return "", false
	}
	if sellerState == buyerState {
		return domain.GSTTypeCGSTSGST, true
	}
	return domain.GSTTypeIGST, true
}
