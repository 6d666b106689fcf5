package entities

type LoanRequest struct {
	LoanAmnt              float64 `json:"loan_amnt"`
	Term                  float64 `json:"term"`
	IntRate               float64 `json:"int_rate"`
	FundedAmntInv         float64 `json:"funded_amnt_inv"`
	DTI                   float64 `json:"dti"`
	TotCollAmnt           float64 `json:"tot_coll_amnt"`
	RevolBal              float64 `json:"revol_bal"`
	CollectionRecoveryFee float64 `json:"collection_recovery_fee"`
	RevolUtil             float64 `json:"revol_util"`
	TotalCurBal           float64 `json:"total_cur_bal"`
	LastWeekPay           float64 `json:"last_week_pay"`
	Delinq2Yrs            float64 `json:"delinq_2yrs"`
	InqLast6Mths          float64 `json:"inq_last_6mths"`
	OpenAcc               float64 `json:"open_acc"`
	TotalAcc              float64 `json:"total_acc"`
}

// PropertyRequest carries categorical fields pre-encoded as small integers.
type PropertyRequest struct {
	PostedBy          int     `json:"posted_by"`
	UnderConstruction int     `json:"under_construction"`
	RERA              int     `json:"rera"`
	BHK               int     `json:"bhk"`
	SquareFeet        float64 `json:"square_feet"`
	ReadyToMove       int     `json:"ready_to_move"`
	Resale            int     `json:"resale"`
	City              string  `json:"city"`
	Locality          string  `json:"locality"`
}

type StockRequest struct {
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Volume    float64 `json:"volume"`
	Change    float64 `json:"change"`
	PrevPrice float64 `json:"prev_price"`
}
