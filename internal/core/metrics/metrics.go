package metrics

import "github.com/prometheus/client_golang/prometheus"

// 业务指标；HTTP 请求指标在 middleware.Metrics 中
var (
	UsersRegistered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "classifieds", Name: "users_registered_total", Help: "Registered users",
	})
	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classifieds", Name: "logins_total", Help: "Login attempts by result",
	}, []string{"result"})
	AdsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "classifieds", Name: "ads_created_total", Help: "Ads created",
	})
	AdsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "classifieds", Name: "ads_deleted_total", Help: "Ads deleted",
	})
	AdViews = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "classifieds", Name: "ad_views_total", Help: "Ad detail views",
	})
	ImagesUploaded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classifieds", Name: "images_uploaded_total", Help: "Image uploads by result",
	}, []string{"result"})
	WishlistOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classifieds", Name: "wishlist_ops_total", Help: "Wishlist mutations",
	}, []string{"op"})
	SearchLoads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "classifieds", Name: "search_loads_total", Help: "Searches served from the database",
	})
)

func init() {
	prometheus.MustRegister(UsersRegistered, Logins, AdsCreated, AdsDeleted, AdViews,
		ImagesUploaded, WishlistOps, SearchLoads)
}
