package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/shopsearch/internal/domain/geo"
)

// Product field names as stored in the search index.
const (
	FieldID              = "id"
	FieldName            = "name"
	FieldDescription     = "description"
	FieldDescriptionLong = "descriptionLong"
	FieldSearchKeywords  = "searchKeywords"
	FieldCategory        = "category"
	FieldBrand           = "brand"
	FieldTags            = "tags"
	FieldPrice           = "price"
	FieldStock           = "stock"
	FieldPriority        = "priority"
	FieldIsSale          = "isSale"
	FieldImageURL        = "imageUrl"
	FieldLocation        = "location"
	FieldCreatedAt       = "createdAt"
	FieldUpdatedAt       = "updatedAt"
)

// Product is a catalog entry as indexed for search.
type Product struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	DescriptionLong string     `json:"descriptionLong,omitempty"`
	SearchKeywords  string     `json:"searchKeywords,omitempty"`
	Category        string     `json:"category,omitempty"`
	Brand           string     `json:"brand,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	Price           int64      `json:"price"`
	Stock           int64      `json:"stock,omitempty"`
	Priority        int64      `json:"priority,omitempty"`
	IsSale          bool       `json:"isSale"`
	ImageURL        string     `json:"imageUrl,omitempty"`
	Location        *geo.Point `json:"location,omitempty"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

// Validate checks the minimum a document needs to be indexed.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if p.Location != nil && !p.Location.Valid() {
		return fmt.Errorf("%w: location out of range", ErrInvalidProduct)
	}
	return nil
}

// SeedProducts is the fixed apparel catalog used to (re)build a demo index.
func SeedProducts() []Product {
	return []Product{
		{ID: "101", Name: "オーバーサイズ ヘビーウェイトTシャツ", Category: "トップス", Price: 3900,
			Description: "綿100%の厚手生地。ストリートスタイルに最適なシルエット。"},
		{ID: "102", Name: "リネンブレンド リラックスパンツ", Category: "パンツ", Price: 5800,
			Description: "清涼感のある麻混素材。夏場でも快適に過ごせるワイドパンツ。"},
		{ID: "103", Name: "撥水加工 マウンテンパーカー", Category: "アウター", Price: 12800,
			Description: "急な雨でも安心の防風・撥水機能。キャンプやフェスに最適。"},
		{ID: "104", Name: "ヴィンテージウォッシュ デニムジャケット", Category: "アウター", Price: 8900,
			Description: "着古したような風合いのGジャン。どんな服にも合わせやすい一着。"},
		{ID: "105", Name: "カシミヤタッチ Vネックセーター", Category: "トップス", Price: 4500,
			Description: "柔らかく肌触りの良いニット。オフィスカジュアルにも使えます。"},
	}
}
