// Package storefront is the Go client a storefront front end embeds to talk to
// shopsearch and to personalize searches for a visitor.
//
// It keeps a per-visitor category affinity history in durable client storage,
// forwards behaviour events to the analytics collaborator, debounces
// search-as-you-type input and schedules insight-triggered promotions.
//
//	store, _ := storefront.OpenBadgerStore("/var/lib/shop/affinity")
//	sess, _ := storefront.NewSession("http://localhost:3000",
//	    storefront.WithAnalyticsURL("http://localhost:3001"),
//	    storefront.WithAffinityStore(store),
//	    storefront.WithVisitor("demo_user_123", "browser_vid_001"),
//	)
//	defer sess.Close()
//
//	sess.Track(ctx, "page_view", nil)
//	_ = sess.ClickCategory(ctx, "アウター")
//	res, _ := sess.Search(ctx, storefront.Params{Query: "パーカー"})
package storefront
