package enum

// ProductClass stock, etf, future
type ProductClass uint8

const (
	ProductClassUnknown ProductClass = iota
	ProductClassStock
	ProductClassETF
	ProductClassFuture
	_product_class_end
)

var productClassNames = [...]string{
	ProductClassUnknown: "UNKNOWN",
	ProductClassStock:   "STOCK",
	ProductClassETF:     "ETF",
	ProductClassFuture:  "FUTURE",
}

func (p ProductClass) IsAvailable() bool {
	return p > ProductClassUnknown && p < _product_class_end
}

func (p ProductClass) String() string {
	if p >= _product_class_end {
		return productClassNames[ProductClassUnknown]
	}
	return productClassNames[p]
}

func (p ProductClass) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *ProductClass) UnmarshalText(text []byte) error {
	*p = ParseProductClass(string(text))
	return nil
}

func ParseProductClass(s string) ProductClass {
	return ProductClass(parseName(productClassNames[:], s))
}
