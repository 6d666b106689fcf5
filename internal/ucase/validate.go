package ucase

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Imm0bilize/xai-prediction-gateway/internal/entities"
)

// Validate converts raw form values into the domain's typed request. It stops at the
// first field that does not parse, in catalog order.
func Validate(domain entities.Domain, values map[string]string) (any, error) {
	fields := entities.Fields(domain)
	if fields == nil {
		return nil, entities.ErrUnknownDomain
	}

	floats := make(map[string]float64, len(fields))
	ints := make(map[string]int, len(fields))
	texts := make(map[string]string, len(fields))

	for _, f := range fields {
		raw := values[f.Name]

		switch f.Kind {
		case entities.KindText:
			if strings.TrimSpace(raw) == "" {
				return nil, &entities.ValidationError{Field: f.Name, Reason: entities.ReasonEmptyText}
			}
			texts[f.Name] = raw
		case entities.KindInteger:
			v, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return nil, &entities.ValidationError{Field: f.Name}
			}
			if reason := checkBounds(f, float64(v)); reason != "" {
				return nil, &entities.ValidationError{Field: f.Name, Reason: reason}
			}
			ints[f.Name] = v
		default:
			v, err := parseFloat(raw)
			if err != nil {
				return nil, &entities.ValidationError{Field: f.Name}
			}
			if reason := checkBounds(f, v); reason != "" {
				return nil, &entities.ValidationError{Field: f.Name, Reason: reason}
			}
			floats[f.Name] = v
		}
	}

	switch domain {
	case entities.DomainLoan:
		return entities.LoanRequest{
			LoanAmnt:              floats["loan_amnt"],
			Term:                  floats["term"],
			IntRate:               floats["int_rate"],
			FundedAmntInv:         floats["funded_amnt_inv"],
			DTI:                   floats["dti"],
			TotCollAmnt:           floats["tot_coll_amnt"],
			RevolBal:              floats["revol_bal"],
			CollectionRecoveryFee: floats["collection_recovery_fee"],
			RevolUtil:             floats["revol_util"],
			TotalCurBal:           floats["total_cur_bal"],
			LastWeekPay:           floats["last_week_pay"],
			Delinq2Yrs:            floats["delinq_2yrs"],
			InqLast6Mths:          floats["inq_last_6mths"],
			OpenAcc:               floats["open_acc"],
			TotalAcc:              floats["total_acc"],
		}, nil
	case entities.DomainProperty:
		return entities.PropertyRequest{
			PostedBy:          ints["posted_by"],
			UnderConstruction: ints["under_construction"],
			RERA:              ints["rera"],
			BHK:               ints["bhk"],
			SquareFeet:        floats["square_feet"],
			ReadyToMove:       ints["ready_to_move"],
			Resale:            ints["resale"],
			City:              texts["city"],
			Locality:          texts["locality"],
		}, nil
	default:
		return entities.StockRequest{
			Open:      floats["open"],
			High:      floats["high"],
			Low:       floats["low"],
			Volume:    floats["volume"],
			Change:    floats["change"],
			PrevPrice: floats["prev_price"],
		}, nil
	}
}

// decimalFloat is plain decimal notation. strconv also takes Go literals such as
// "1_000" or "0x1p4", which a form must not.
var decimalFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

func parseFloat(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if !decimalFloat.MatchString(raw) {
		return 0, strconv.ErrSyntax
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

func checkBounds(f entities.Field, v float64) string {
	if f.Min.Set && v < f.Min.Value {
		return "minimum " + strconv.FormatFloat(f.Min.Value, 'f', -1, 64)
	}
	if f.Max.Set && v > f.Max.Value {
		return "maximum " + strconv.FormatFloat(f.Max.Value, 'f', -1, 64)
	}
	return ""
}
