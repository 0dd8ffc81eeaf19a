package cart

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Product is what the catalog hands to Add.
type Product struct {
	ID    string
	Name  string
	Price int64
	Image string
}

// LineItem is the normalized cart entry. Legacy payloads (precio, nombre,
// imagen, numeric ids, numbers as strings) are accepted when decoding and
// are never written back.
type LineItem struct {
	ProductID string `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"price"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"cantidad"`
}

func (li LineItem) LineTotal() int64 { return li.UnitPrice * int64(li.Quantity) }

func (li *LineItem) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID       FlexString `json:"id"`
		Name     string     `json:"name"`
		Nombre   string     `json:"nombre"`
		Price    *FlexInt   `json:"price"`
		Precio   *FlexInt   `json:"precio"`
		Image    string     `json:"image"`
		Imagen   string     `json:"imagen"`
		Cantidad *FlexInt   `json:"cantidad"`
		Quantity *FlexInt   `json:"quantity"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*li = LineItem{
		ProductID: string(raw.ID),
		Name:      firstNonEmpty(raw.Name, raw.Nombre),
		Image:     firstNonEmpty(raw.Image, raw.Imagen),
	}
	switch {
	case raw.Price != nil && *raw.Price != 0:
		li.UnitPrice = int64(*raw.Price)
	case raw.Precio != nil:
		li.UnitPrice = int64(*raw.Precio)
	}
	switch {
	case raw.Cantidad != nil:
		li.Quantity = int(*raw.Cantidad)
	case raw.Quantity != nil:
		li.Quantity = int(*raw.Quantity)
	}
	return nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// FlexInt decodes a JSON number or numeric string. Anything else, including
// null and garbage strings, decodes to 0. Fractions are rounded.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*f = 0
		return nil
	}
	*f = FlexInt(math.Round(v))
	return nil
}

// FlexString decodes a JSON string or number as a string.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*f = FlexString(str)
		return nil
	}
	*f = FlexString(s)
	return nil
}

func decodeItems(raw string) ([]LineItem, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	out := items[:0]
	for _, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}
