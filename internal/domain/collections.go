package domain

// Имена коллекций документного хранилища.
const (
	CollectionProducts = "products"
	CollectionUsers    = "users"
	CollectionOrders   = "orders"
	CollectionCarts    = "carts"
	CollectionReviews  = "reviews"
	CollectionCoupons  = "coupons"
)
