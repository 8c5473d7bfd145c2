package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/shopsearch/internal/db/elastic"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/request"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
)

// searchFlags mirrors the query parameters of GET /api/products/search.
type searchFlags struct {
	q, category, pref, sort string
	lat, lon, sensitivity   float64
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.q, "query", "q", "", "Free-text query")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "Post-filter by category (use セール for sale items)")
	cmd.Flags().StringVar(&f.pref, "pref", "", "Preferred category of the visitor")
	cmd.Flags().StringVar(&f.sort, "sort", "", "Ordering: price_asc or price_desc")
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "Visitor latitude")
	cmd.Flags().Float64Var(&f.lon, "lon", 0, "Visitor longitude")
	cmd.Flags().Float64Var(&f.sensitivity, "price-sensitivity", 0, "Price-sensitivity score (0-100)")
}

// searchContext builds a context from the flags the user actually set.
func (f *searchFlags) searchContext(cmd *cobra.Command) request.SearchContext {
	changed := cmd.Flags().Changed
	p := request.Params{Sort: f.sort}
	if changed("query") {
		p.Query = &f.q
	}
	if changed("category") {
		p.Category = &f.category
	}
	if changed("pref") {
		p.PreferredCategory = &f.pref
	}
	if changed("lat") {
		p.Lat = &f.lat
	}
	if changed("lon") {
		p.Lon = &f.lon
	}
	if changed("price-sensitivity") {
		p.PrioritySensitivity = &f.sensitivity
	}
	return request.New(p)
}

// NewSearchCmd creates the 'search' command that runs a storefront search against the index.
func NewSearchCmd(env *string) *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a storefront search and print the response",
		Example: `  shopctl search -q パーカー --category アウター
  shopctl search --pref トップス --price-sensitivity 80`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context(), *env)
			if err != nil {
				return err
			}
			defer rt.Close()

			resp, err := rt.search.Search(cmd.Context(), flags.searchContext(cmd))
			if err != nil {
				return err
			}
			products := make([]map[string]any, len(resp.Products))
			for i, h := range resp.Products {
				products[i] = h.Document()
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"products":   products,
				"categories": resp.Facets,
				"total":      resp.Total,
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// NewComposeCmd creates the 'compose' command that prints the Elasticsearch
// request body a search would send, without contacting any backend.
func NewComposeCmd() *cobra.Command {
	var (
		flags    searchFlags
		pageSize int
	)

	cmd := &cobra.Command{
		Use:     "compose",
		Aliases: []string{"explain"},
		Short:   "Print the Elasticsearch query composed for a search",
		Long: `Compose builds the function-score query for the given search inputs using
the default ranking weights and prints it as Elasticsearch JSON.`,
		Example: `  shopctl compose -q シャツ --lat 35.68 --lon 139.76`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := searchuc.Compose(flags.searchContext(cmd), searchuc.DefaultWeights())
			q.Size = pageSize
			return writeJSON(cmd.OutOrStdout(), elastic.RenderSearch(&q))
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&pageSize, "size", searchuc.DefaultPageSize, "Number of hits to request")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
