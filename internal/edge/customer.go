package edge

// CustomerList is the envelope of both the inbound *FullCustomerList.json
// file and the outbound {n}-CustomerList.json feedback file. The Max*
// counts are schema metadata produced by EDGE; they are carried through
// to the export unchanged, never recomputed.
type CustomerList struct {
	Customers    []Customer `json:"Customers"`
	MaxAddresses int        `json:"MaxAddresses"`
	MaxEmails    int        `json:"MaxEmails"`
	MaxPhones    int        `json:"MaxPhones"`
}

type Customer struct {
	Key       string         `json:"Key"`
	PairValue CustomerDetail `json:"PairValue"`
}

// FirstEmail returns the first email address on the record, or "" when the
// record carries none. Records without an email cannot be linked to a
// local account and are skipped.
func (c Customer) FirstEmail() string {
	if len(c.PairValue.Emails) == 0 {
		return ""
	}
	return c.PairValue.Emails[0].PairValue.EmailEmail
}

// CustomerDetail is the full EDGE customer schema. Most fields have no
// local equivalent and are emitted empty or null for schema compatibility.
type CustomerDetail struct {
	CustomerStoreID         int         `json:"CustomerStoreId"`
	CustomerID              interface{} `json:"Customerid"`
	CustomerKey             string      `json:"CustomerKey"`
	CustomerTitle           string      `json:"CustomerTitle"`
	CustomerFirstName       string      `json:"CustomerFirstName"`
	CustomerMiddleName      string      `json:"CustomerMiddleName"`
	CustomerLastName        string      `json:"CustomerLastName"`
	CustomerSuffix          string      `json:"CustomerSuffix"`
	CustomerGender          string      `json:"CustomerGender"`
	CustomerBirthDate       string      `json:"CustomerBirthDate"`
	CustomerSpouseBirthDate string      `json:"CustomerSpouseBirthDate"`
	CustomerWeddingAnniv    string      `json:"CustomerWeddingAnniv"`
	CustomerDateEntered     string      `json:"CustomerDateEntered"`
	CustomerImage           string      `json:"CustomerImage"`
	CustomerAcquisition     string      `json:"CustomerAcquisition"`
	CustomerPrefMail        string      `json:"CustomerPrefMail"`
	CustomerPrefPhone       string      `json:"CustomerPrefPhone"`
	CustomerSSNO            string      `json:"CustomerSSNO"`
	CustomerNotes           string      `json:"CustomerNotes"`
	CustomerPrefEMail       string      `json:"CustomerPrefEMail"`
	CustomerType            string      `json:"CustomerType"`
	CustomerIsCompany       bool        `json:"CustomerIsCompany"`
	CustomerCompany         string      `json:"CustomerCompany"`
	CustomerKey1            string      `json:"CustomerKey1"`
	CustomerKey2            string      `json:"CustomerKey2"`
	CustomerKey3            string      `json:"CustomerKey3"`
	CustomerKey4            string      `json:"CustomerKey4"`
	CustomerKey5            string      `json:"CustomerKey5"`
	CustomerKey6            string      `json:"CustomerKey6"`
	CustomerKey7            string      `json:"CustomerKey7"`
	CustomerKey8            string      `json:"CustomerKey8"`
	CustomerUpdateSeq       interface{} `json:"CustomerUpdateSeq"`
	CustomerUpdateDate      interface{} `json:"CustomerUpdateDate"`
	CustomerUpdateStore     interface{} `json:"CustomerUpdateStore"`
	CustomerUpdateStation   interface{} `json:"CustomerUpdateStation"`
	CustomerUpdateUser      interface{} `json:"CustomerUpdateUser"`
	CustomerXfer            interface{} `json:"CustomerXfer"`
	CustomerInactive        bool        `json:"CustomerInactive"`
	CustomerWholesale       bool        `json:"CustomerWholesale"`
	CustomerDiscount        interface{} `json:"CustomerDiscount"`
	CustomerMinMarkup       interface{} `json:"CustomerMinMarkup"`
	CustomerQuickbooks      string      `json:"CustomerQuickbooks"`
	CustomerYnStoreCredit   bool        `json:"CustomerYnStoreCredit"`
	CustomerCreditLimit     interface{} `json:"CustomerCreditLimit"`
	CustomerTerms           string      `json:"CustomerTerms"`
	CustomerNotes255        string      `json:"CustomerNotes255"`
	CustomerNoStatements    bool        `json:"CustomerNoStatements"`
	CustomerTaxExempt       bool        `json:"CustomerTaxExempt"`
	CustomerDateVerified    interface{} `json:"CustomerDateVerified"`
	CustomerCoupleName      string      `json:"CustomerCoupleName"`
	CustomerMarried         bool        `json:"CustomerMarried"`
	CustomerSpouseKey       string      `json:"CustomerSpouseKey"`
	CustomerInterestRate    interface{} `json:"CustomerInterestRate"`
	CustomerSwapped         bool        `json:"CustomerSwapped"`
	CustomerOldCustKey      string      `json:"CustomerOldCustKey"`
	CustomerAsKey           int         `json:"CustomerAsKey"`
	CustomerReferredBy      string      `json:"CustomerReferredBy"`
	CustomerLicenseNo       string      `json:"CustomerLicenseNo"`
	CustomerMinPayment      interface{} `json:"CustomerMinPayment"`
	CustomerTaxID           string      `json:"CustomerTaxId"`
	CustomerAccountKey      string      `json:"CustomerAccountKey"`

	Addresses []Address `json:"Addresses"`
	Emails    []Email   `json:"Emails"`
	Phones    []Phone   `json:"Phones"`

	CustomerTransfer Transfer `json:"CustomerTransfer"`
}

type Address struct {
	Key       string        `json:"Key"`
	PairValue AddressDetail `json:"PairValue"`
}

type AddressDetail struct {
	AddressCustKey        string `json:"AddressCustKey"`
	AddressType           string `json:"AddressType"`
	AddressCompany        string `json:"AddressCompany"`
	AddressStreet         string `json:"AddressStreet"`
	AddressStreet2        string `json:"AddressStreet2"`
	AddressCity           string `json:"AddressCity"`
	AddressState          string `json:"AddressState"`
	AddressZip            string `json:"AddressZip"`
	AddressCountry        string `json:"AddressCountry"`
	AddressCustAccountKey string `json:"AddressCustAccountKey"`
}

type Email struct {
	Key       string      `json:"Key"`
	PairValue EmailDetail `json:"PairValue"`
}

type EmailDetail struct {
	EmailCustKey        string `json:"EmailCustKey"`
	EmailType           string `json:"EmailType"`
	EmailEmail          string `json:"EmailEmail"`
	EmailSendPromo      bool   `json:"EmailSendPromo"`
	EmailCustAccountKey string `json:"EmailCustAccountKey"`
}

type Phone struct {
	Key       string      `json:"Key"`
	PairValue PhoneDetail `json:"PairValue"`
}

type PhoneDetail struct {
	PhoneCustKey        string `json:"PhoneCustKey"`
	PhoneType           string `json:"PhoneType"`
	PhonePhone          string `json:"PhonePhone"`
	PhoneDoNotContact   bool   `json:"PhoneDoNotContact"`
	PhonePhoneExt       string `json:"PhonePhoneExt"`
	PhoneCustAccountKey string `json:"PhoneCustAccountKey"`
}

// Transfer links an EDGE customer to its web counterpart. WebTransferWebID
// is the local account ID; patching it into an imported record is the
// feedback that tells EDGE the link now exists.
type Transfer struct {
	WebTransferKey                   string      `json:"WebTransferKey"`
	WebTransferEdgeID                interface{} `json:"WebTransferEdgeID"`
	WebTransferWebID                 interface{} `json:"WebTransferWebID"`
	WebTransferLastModified          interface{} `json:"WebTransferLastModified"`
	WebTransferRequiresWebUpload     bool        `json:"WebTransferRequiresWebUpload"`
	WebTransferRequiresEdgeAttention bool        `json:"WebTransferRequiresEdgeAttention"`
	WebTransferType                  int         `json:"WebTransferType"`
	WebTransferLinkedWebID           string      `json:"WebTransferLinkedWebID"`
	WebTransferVendorID              int         `json:"WebTransferVendorID"`
}
