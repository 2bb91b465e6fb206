package repository

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/nikolayk812/cartstore-demo/internal/domain"
	"github.com/shopspring/decimal"
)

// blobLine is the stored form of a cart line, a JSON object per line with
// the price as a bare number.
type blobLine struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Price    blobPrice `json:"price"`
	Image    string    `json:"image"`
	Quantity int       `json:"quantity"`
	Color    string    `json:"color,omitempty"`
	Size     string    `json:"size,omitempty"`
	MaxStock int       `json:"maxStock"`
}

type blobPrice decimal.Decimal

func (p blobPrice) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(p).String()), nil
}

func (p *blobPrice) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*p = blobPrice(d)

	return nil
}

func encodeLines(lines []domain.CartLine) ([]byte, error) {
	blob := make([]blobLine, 0, len(lines))
	for _, line := range lines {
		blob = append(blob, mapDomainToBlobLine(line))
	}

	data, err := json.Marshal(blob)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return data, nil
}

func decodeLines(data []byte) ([]domain.CartLine, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var blob []blobLine
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	lines := make([]domain.CartLine, 0, len(blob))
	for _, b := range blob {
		lines = append(lines, mapBlobLineToDomain(b))
	}

	return lines, nil
}

func mapDomainToBlobLine(line domain.CartLine) blobLine {
	return blobLine{
		ID:       line.ProductID,
		Name:     line.Name,
		Price:    blobPrice(line.UnitPrice),
		Image:    line.Image,
		Quantity: line.Quantity,
		Color:    line.Color,
		Size:     line.Size,
		MaxStock: line.MaxStock,
	}
}

func mapBlobLineToDomain(b blobLine) domain.CartLine {
	return domain.CartLine{
		ProductID: b.ID,
		Name:      b.Name,
		UnitPrice: decimal.Decimal(b.Price),
		Image:     b.Image,
		Color:     b.Color,
		Size:      b.Size,
		Quantity:  b.Quantity,
		MaxStock:  b.MaxStock,
	}
}
