package entities

import (
	"strings"

	"github.com/pkg/errors"
)

type Domain string

const (
	DomainLoan     Domain = "loan"
	DomainProperty Domain = "property"
	DomainStock    Domain = "stock"
)

var ErrUnknownDomain = errors.New("unknown prediction domain")

func Domains() []Domain {
	return []Domain{DomainLoan, DomainProperty, DomainStock}
}

func ParseDomain(s string) (Domain, error) {
	d := Domain(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case DomainLoan, DomainProperty, DomainStock:
		return d, nil
	default:
		return "", errors.Wrapf(ErrUnknownDomain, "%q", s)
	}
}

// Title is the page heading used for the domain's form.
func (d Domain) Title() string {
	switch d {
	case DomainLoan:
		return "Loan Default Prediction"
	case DomainProperty:
		return "Property Valuation"
	case DomainStock:
		return "Stock Price Prediction"
	default:
		return string(d)
	}
}
