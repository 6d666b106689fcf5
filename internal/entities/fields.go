package entities

import "strings"

type FieldKind int

const (
	KindFloat FieldKind = iota
	KindInteger
	KindText
)

func (k FieldKind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInteger:
		return "integer"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

type Bound struct {
	Set   bool
	Value float64
}

func AtLeast(v float64) Bound { return Bound{Set: true, Value: v} }
func AtMost(v float64) Bound  { return Bound{Set: true, Value: v} }

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Field struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Description string    `json:"description,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Kind        FieldKind `json:"-"`
	KindName    string    `json:"kind"`
	Min         Bound     `json:"-"`
	Max         Bound     `json:"-"`
	Options     []Option  `json:"options,omitempty"`
	Default     string    `json:"default"`
}

var yesNo = []Option{{Value: "0", Label: "No"}, {Value: "1", Label: "Yes"}}

var loanFields = []Field{
	{Name: "loan_amnt", Label: "Loan Amount ($)", Description: "The total amount of the loan requested"},
	{Name: "term", Label: "Loan Term (months)", Description: "Number of months to repay the loan (typically 36 or 60)"},
	{Name: "int_rate", Label: "Interest Rate (%)", Description: "Annual interest rate percentage"},
	{Name: "funded_amnt_inv", Label: "Funded Amount by Investor ($)", Description: "Total amount funded by investors"},
	{Name: "dti", Label: "Debt-to-Income Ratio", Description: "Monthly debt payments divided by monthly gross income"},
	{Name: "tot_coll_amnt", Label: "Total Collection Amount ($)", Description: "Total collection amounts ever owed"},
	{Name: "revol_bal", Label: "Revolving Balance ($)", Description: "Total credit revolving balance"},
	{Name: "collection_recovery_fee", Label: "Collection Recovery Fee ($)", Description: "Post charge-off collection fee"},
	{Name: "revol_util", Label: "Revolving Utilization Rate (%)", Description: "Amount of credit used relative to credit available"},
	{Name: "total_cur_bal", Label: "Total Current Balance ($)", Description: "Total current balance across all accounts"},
	{Name: "last_week_pay", Label: "Last Week Payment ($)", Description: "Payment amount in the last week"},
	{Name: "delinq_2yrs", Label: "Delinquencies in Last 2 Years", Description: "Number of times borrower has been 30+ days past due"},
	{Name: "inq_last_6mths", Label: "Credit Inquiries in Last 6 Months", Description: "Number of credit inquiries in past 6 months"},
	{Name: "open_acc", Label: "Number of Open Accounts", Description: "Number of open credit lines"},
	{Name: "total_acc", Label: "Total Number of Accounts", Description: "Total number of credit accounts"},
}

var propertyFields = []Field{
	{
		Name: "posted_by", Label: "Posted By", Kind: KindInteger, Default: "0",
		Min: AtLeast(0), Max: AtMost(2),
		Options: []Option{{Value: "0", Label: "Owner"}, {Value: "1", Label: "Dealer"}, {Value: "2", Label: "Builder"}},
	},
	{Name: "under_construction", Label: "Is the property under construction?", Kind: KindInteger, Default: "0", Min: AtLeast(0), Max: AtMost(1), Options: yesNo},
	{Name: "rera", Label: "RERA Approved", Kind: KindInteger, Default: "0", Min: AtLeast(0), Max: AtMost(1), Options: yesNo},
	{Name: "bhk", Label: "Enter BHK", Placeholder: "Enter number of BHK", Kind: KindInteger, Default: "1", Min: AtLeast(1)},
	{Name: "square_feet", Label: "Enter Square Feet", Placeholder: "Enter square feet", Kind: KindFloat, Default: "1000", Min: AtLeast(0)},
	{Name: "ready_to_move", Label: "Is it ready to move?", Kind: KindInteger, Default: "0", Min: AtLeast(0), Max: AtMost(1), Options: yesNo},
	{Name: "resale", Label: "Is it a resale?", Kind: KindInteger, Default: "0", Min: AtLeast(0), Max: AtMost(1), Options: yesNo},
	{Name: "city", Label: "Enter City", Placeholder: "Enter city name", Kind: KindText, Default: "Bangalore"},
	{Name: "locality", Label: "Enter Locality", Placeholder: "Enter locality name", Kind: KindText, Default: "Whitefield"},
}

var stockFields = []Field{
	{Name: "open", Label: "Open Price", Placeholder: "Enter opening price", Min: AtLeast(0)},
	{Name: "high", Label: "High Price", Placeholder: "Enter high price", Min: AtLeast(0)},
	{Name: "low", Label: "Low Price", Placeholder: "Enter low price", Min: AtLeast(0)},
	{Name: "volume", Label: "Volume (Millions)", Placeholder: "Enter volume", Min: AtLeast(0)},
	{Name: "change", Label: "Daily Change", Placeholder: "Enter daily change"},
	{Name: "prev_price", Label: "Previous Day Price", Placeholder: "Enter previous day price", Min: AtLeast(0)},
}

// Fields returns a copy of the domain's field catalog in submission order.
func Fields(d Domain) []Field {
	var src []Field
	switch d {
	case DomainLoan:
		src = loanFields
	case DomainProperty:
		src = propertyFields
	case DomainStock:
		src = stockFields
	default:
		return nil
	}

	out := make([]Field, len(src))
	for i, f := range src {
		if f.Placeholder == "" && f.Kind != KindText && len(f.Options) == 0 {
			f.Placeholder = "Enter " + strings.ToLower(f.Label)
		}
		f.KindName = f.Kind.String()
		out[i] = f
	}
	return out
}

func Defaults(d Domain) map[string]string {
	fields := Fields(d)
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f.Name] = f.Default
	}
	return values
}
