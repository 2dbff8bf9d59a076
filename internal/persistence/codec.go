package persistence

import (
	"encoding/json"

	"github.com/fjod/go_cart/cartd/internal/domain"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// record is the stored shape of one cart line. Price is kept as a JSON number
// holding the exact decimal text.
type record struct {
	ID       flexID      `json:"id"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Image    string      `json:"image"`
	Quantity int         `json:"quantity"`
}

// flexID accepts ids stored as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("id must be a string or a number")
	}
	*f = flexID(n.String())
	return nil
}

func encode(items []domain.CartItem) ([]byte, error) {
	records := make([]record, 0, len(items))
	for _, item := range items {
		records = append(records, record{
			ID:       flexID(item.ID),
			Name:     item.Name,
			Price:    json.Number(item.UnitPrice.String()),
			Image:    item.ImageRef,
			Quantity: item.Quantity,
		})
	}
	data, err := json.Marshal(records)
	return data, errors.Wrap(err, "marshal cart")
}

func decode(data []byte) ([]domain.CartItem, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, "unmarshal cart")
	}

	items := make([]domain.CartItem, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		item, err := r.toItem()
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", i)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, errors.Errorf("line %d: duplicate id %q", i, item.ID)
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}
	return items, nil
}

func (r record) toItem() (domain.CartItem, error) {
	if r.ID == "" {
		return domain.CartItem{}, errors.New("missing id")
	}
	if r.Quantity < 1 {
		return domain.CartItem{}, errors.Errorf("quantity %d below 1", r.Quantity)
	}
	price, err := decimal.NewFromString(r.Price.String())
	if err != nil {
		return domain.CartItem{}, errors.Wrapf(err, "price %q", r.Price.String())
	}
	if price.IsNegative() {
		return domain.CartItem{}, errors.Errorf("negative price %s", price)
	}
	return domain.CartItem{
		ID:        string(r.ID),
		Name:      r.Name,
		UnitPrice: price,
		ImageRef:  r.Image,
		Quantity:  r.Quantity,
	}, nil
}
