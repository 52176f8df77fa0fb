package repository

import (
	"github.com/vladislavdragonenkov/storefront/internal/docstore"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Кодеки сущностей. Encode не включает createdAt/updatedAt: их
// проставляет репозиторий серверными таймстампами при записи.

// ProductCodec — кодек документов коллекции products.
var ProductCodec = Codec[domain.Product]{
	Encode: EncodeProduct,
	Decode: DecodeProduct,
}

// EncodeProduct переводит товар в документные поля.
func EncodeProduct(p domain.Product) docstore.Document {
	doc := docstore.Document{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"categories":  append([]string(nil), p.Categories...),
		"stock":       p.Stock,
		"sku":         p.SKU,
		"featured":    p.Featured,
	}
	if p.DiscountPrice != nil {
		doc["discountPrice"] = *p.DiscountPrice
	}
	if len(p.Attributes) > 0 {
		attrs := make(map[string]any, len(p.Attributes))
		for k, v := range p.Attributes {
			attrs[k] = v
		}
		doc["attributes"] = attrs
	}
	return doc
}

// DecodeProduct восстанавливает товар из документных полей.
func DecodeProduct(id string, data docstore.Document) (domain.Product, error) {
	var p domain.Product
	var err error

	p.ID = id
	if p.Name, err = fieldString(data, "name"); err != nil {
		return domain.Product{}, err
	}
	if p.Description, err = fieldString(data, "description"); err != nil {
		return domain.Product{}, err
	}
	if p.Price, err = fieldFloat(data, "price"); err != nil {
		return domain.Product{}, err
	}
	if _, ok := data["discountPrice"]; ok {
		dp, err := fieldFloat(data, "discountPrice")
		if err != nil {
			return domain.Product{}, err
		}
		p.DiscountPrice = &dp
	}
	if p.Categories, err = fieldStringSlice(data, "categories"); err != nil {
		return domain.Product{}, err
	}
	if p.Stock, err = fieldInt(data, "stock"); err != nil {
		return domain.Product{}, err
	}
	if p.SKU, err = fieldString(data, "sku"); err != nil {
		return domain.Product{}, err
	}
	if p.Featured, err = fieldBool(data, "featured"); err != nil {
		return domain.Product{}, err
	}
	if attrs, err := fieldDoc(data, "attributes"); err != nil {
		return domain.Product{}, err
	} else if len(attrs) > 0 {
		p.Attributes = attrs
	}
	if p.CreatedAt, err = fieldTime(data, "createdAt"); err != nil {
		return domain.Product{}, err
	}
	if p.UpdatedAt, err = fieldTime(data, "updatedAt"); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// UserCodec — кодек документов коллекции users.
var UserCodec = Codec[domain.User]{
	Encode: EncodeUser,
	Decode: DecodeUser,
}

// EncodeUser переводит пользователя в документные поля.
func EncodeUser(u domain.User) docstore.Document {
	return docstore.Document{
		"email":     u.Email,
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"addresses": EncodeAddresses(u.Addresses),
		"role":      string(u.Role),
	}
}

// EncodeAddresses сериализует список адресов пользователя.
func EncodeAddresses(addresses []domain.Address) []any {
	out := make([]any, 0, len(addresses))
	for _, a := range addresses {
		out = append(out, map[string]any{
			"id":         a.ID,
			"street":     a.Street,
			"city":       a.City,
			"state":      a.State,
			"postalCode": a.PostalCode,
			"country":    a.Country,
			"isDefault":  a.IsDefault,
		})
	}
	return out
}

func decodeAddress(data docstore.Document) (domain.Address, error) {
	var a domain.Address
	var err error

	if a.ID, err = fieldString(data, "id"); err != nil {
		return domain.Address{}, err
	}
	if a.Street, err = fieldString(data, "street"); err != nil {
		return domain.Address{}, err
	}
	if a.City, err = fieldString(data, "city"); err != nil {
		return domain.Address{}, err
	}
	if a.State, err = fieldString(data, "state"); err != nil {
		return domain.Address{}, err
	}
	if a.PostalCode, err = fieldString(data, "postalCode"); err != nil {
		return domain.Address{}, err
	}
	if a.Country, err = fieldString(data, "country"); err != nil {
		return domain.Address{}, err
	}
	if a.IsDefault, err = fieldBool(data, "isDefault"); err != nil {
		return domain.Address{}, err
	}
	return a, nil
}

// DecodeUser восстанавливает пользователя из документных полей.
func DecodeUser(id string, data docstore.Document) (domain.User, error) {
	var u domain.User
	var err error

	u.ID = id
	if u.Email, err = fieldString(data, "email"); err != nil {
		return domain.User{}, err
	}
	if u.FirstName, err = fieldString(data, "firstName"); err != nil {
		return domain.User{}, err
	}
	if u.LastName, err = fieldString(data, "lastName"); err != nil {
		return domain.User{}, err
	}
	addrDocs, err := fieldDocSlice(data, "addresses")
	if err != nil {
		return domain.User{}, err
	}
	for _, addrDoc := range addrDocs {
		addr, err := decodeAddress(addrDoc)
		if err != nil {
			return domain.User{}, err
		}
		u.Addresses = append(u.Addresses, addr)
	}
	role, err := fieldString(data, "role")
	if err != nil {
		return domain.User{}, err
	}
	u.Role = domain.UserRole(role)
	if u.CreatedAt, err = fieldTime(data, "createdAt"); err != nil {
		return domain.User{}, err
	}
	if u.UpdatedAt, err = fieldTime(data, "updatedAt"); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// OrderCodec — кодек документов коллекции orders.
var OrderCodec = Codec[domain.Order]{
	Encode: EncodeOrder,
	Decode: DecodeOrder,
}

// EncodeOrder переводит заказ в документные поля.
func EncodeOrder(o domain.Order) docstore.Document {
	items := make([]any, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, map[string]any{
			"productId":   item.ProductID,
			"productName": item.ProductName,
			"quantity":    item.Quantity,
			"price":       item.Price,
			"totalPrice":  item.TotalPrice,
		})
	}
	doc := docstore.Document{
		"userId":        o.UserID,
		"items":         items,
		"status":        string(o.Status),
		"totalAmount":   o.TotalAmount,
		"paymentStatus": string(o.PaymentStatus),
		"shippingAddress": map[string]any{
			"id":         o.ShippingAddress.ID,
			"street":     o.ShippingAddress.Street,
			"city":       o.ShippingAddress.City,
			"state":      o.ShippingAddress.State,
			"postalCode": o.ShippingAddress.PostalCode,
			"country":    o.ShippingAddress.Country,
			"isDefault":  o.ShippingAddress.IsDefault,
		},
	}
	if o.TrackingNumber != "" {
		doc["trackingNumber"] = o.TrackingNumber
	}
	return doc
}

// DecodeOrder восстанавливает заказ из документных полей.
func DecodeOrder(id string, data docstore.Document) (domain.Order, error) {
	var o domain.Order
	var err error

	o.ID = id
	if o.UserID, err = fieldString(data, "userId"); err != nil {
		return domain.Order{}, err
	}
	itemDocs, err := fieldDocSlice(data, "items")
	if err != nil {
		return domain.Order{}, err
	}
	for _, itemDoc := range itemDocs {
		var item domain.OrderItem
		if item.ProductID, err = fieldString(itemDoc, "productId"); err != nil {
			return domain.Order{}, err
		}
		if item.ProductName, err = fieldString(itemDoc, "productName"); err != nil {
			return domain.Order{}, err
		}
		if item.Quantity, err = fieldInt(itemDoc, "quantity"); err != nil {
			return domain.Order{}, err
		}
		if item.Price, err = fieldFloat(itemDoc, "price"); err != nil {
			return domain.Order{}, err
		}
		if item.TotalPrice, err = fieldFloat(itemDoc, "totalPrice"); err != nil {
			return domain.Order{}, err
		}
		o.Items = append(o.Items, item)
	}
	status, err := fieldString(data, "status")
	if err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.OrderStatus(status)
	if o.TotalAmount, err = fieldFloat(data, "totalAmount"); err != nil {
		return domain.Order{}, err
	}
	addrDoc, err := fieldDoc(data, "shippingAddress")
	if err != nil {
		return domain.Order{}, err
	}
	if addrDoc != nil {
		if o.ShippingAddress, err = decodeAddress(addrDoc); err != nil {
			return domain.Order{}, err
		}
	}
	paymentStatus, err := fieldString(data, "paymentStatus")
	if err != nil {
		return domain.Order{}, err
	}
	o.PaymentStatus = domain.PaymentStatus(paymentStatus)
	if o.TrackingNumber, err = fieldString(data, "trackingNumber"); err != nil {
		return domain.Order{}, err
	}
	if o.CreatedAt, err = fieldTime(data, "createdAt"); err != nil {
		return domain.Order{}, err
	}
	if o.UpdatedAt, err = fieldTime(data, "updatedAt"); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// CartCodec — кодек документов коллекции carts.
var CartCodec = Codec[domain.Cart]{
	Encode: EncodeCart,
	Decode: DecodeCart,
}

// EncodeCart переводит корзину в документные поля.
func EncodeCart(c domain.Cart) docstore.Document {
	return docstore.Document{
		"userId": c.UserID,
		"items":  EncodeCartItems(c.Items),
	}
}

// EncodeCartItems сериализует позиции корзины.
func EncodeCartItems(items []domain.CartItem) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, map[string]any{
			"productId": item.ProductID,
			"quantity":  item.Quantity,
		})
	}
	return out
}

// DecodeCart восстанавливает корзину из документных полей.
func DecodeCart(id string, data docstore.Document) (domain.Cart, error) {
	var c domain.Cart
	var err error

	c.ID = id
	if c.UserID, err = fieldString(data, "userId"); err != nil {
		return domain.Cart{}, err
	}
	itemDocs, err := fieldDocSlice(data, "items")
	if err != nil {
		return domain.Cart{}, err
	}
	for _, itemDoc := range itemDocs {
		var item domain.CartItem
		if item.ProductID, err = fieldString(itemDoc, "productId"); err != nil {
			return domain.Cart{}, err
		}
		if item.Quantity, err = fieldInt(itemDoc, "quantity"); err != nil {
			return domain.Cart{}, err
		}
		c.Items = append(c.Items, item)
	}
	if c.CreatedAt, err = fieldTime(data, "createdAt"); err != nil {
		return domain.Cart{}, err
	}
	if c.UpdatedAt, err = fieldTime(data, "updatedAt"); err != nil {
		return domain.Cart{}, err
	}
	return c, nil
}

// ReviewCodec — кодек документов коллекции reviews.
var ReviewCodec = Codec[domain.Review]{
	Encode: EncodeReview,
	Decode: DecodeReview,
}

// EncodeReview переводит отзыв в документные поля.
func EncodeReview(r domain.Review) docstore.Document {
	return docstore.Document{
		"userId":    r.UserID,
		"productId": r.ProductID,
		"rating":    r.Rating,
		"comment":   r.Comment,
	}
}

// DecodeReview восстанавливает отзыв из документных полей.
func DecodeReview(id string, data docstore.Document) (domain.Review, error) {
	var r domain.Review
	var err error

	r.ID = id
	if r.UserID, err = fieldString(data, "userId"); err != nil {
		return domain.Review{}, err
	}
	if r.ProductID, err = fieldString(data, "productId"); err != nil {
		return domain.Review{}, err
	}
	if r.Rating, err = fieldInt(data, "rating"); err != nil {
		return domain.Review{}, err
	}
	if r.Comment, err = fieldString(data, "comment"); err != nil {
		return domain.Review{}, err
	}
	if r.CreatedAt, err = fieldTime(data, "createdAt"); err != nil {
		return domain.Review{}, err
	}
	if r.UpdatedAt, err = fieldTime(data, "updatedAt"); err != nil {
		return domain.Review{}, err
	}
	return r, nil
}

// CouponCodec — кодек документов коллекции coupons.
var CouponCodec = Codec[domain.Coupon]{
	Encode: EncodeCoupon,
	Decode: DecodeCoupon,
}

// EncodeCoupon переводит купон в документные поля.
func EncodeCoupon(c domain.Coupon) docstore.Document {
	return docstore.Document{
		"code":          c.Code,
		"discountType":  string(c.DiscountType),
		"discountValue": c.DiscountValue,
		"minPurchase":   c.MinPurchase,
		"startDate":     c.StartDate,
		"endDate":       c.EndDate,
		"usageLimit":    c.UsageLimit,
		"usageCount":    c.UsageCount,
		"isActive":      c.IsActive,
	}
}

// DecodeCoupon восстанавливает купон из документных полей.
func DecodeCoupon(id string, data docstore.Document) (domain.Coupon, error) {
	var c domain.Coupon
	var err error

	c.ID = id
	if c.Code, err = fieldString(data, "code"); err != nil {
		return domain.Coupon{}, err
	}
	discountType, err := fieldString(data, "discountType")
	if err != nil {
		return domain.Coupon{}, err
	}
	c.DiscountType = domain.DiscountType(discountType)
	if c.DiscountValue, err = fieldFloat(data, "discountValue"); err != nil {
		return domain.Coupon{}, err
	}
	if c.MinPurchase, err = fieldFloat(data, "minPurchase"); err != nil {
		return domain.Coupon{}, err
	}
	if c.StartDate, err = fieldTime(data, "startDate"); err != nil {
		return domain.Coupon{}, err
	}
	if c.EndDate, err = fieldTime(data, "endDate"); err != nil {
		return domain.Coupon{}, err
	}
	if c.UsageLimit, err = fieldInt(data, "usageLimit"); err != nil {
		return domain.Coupon{}, err
	}
	if c.UsageCount, err = fieldInt(data, "usageCount"); err != nil {
		return domain.Coupon{}, err
	}
	if c.IsActive, err = fieldBool(data, "isActive"); err != nil {
		return domain.Coupon{}, err
	}
	if c.CreatedAt, err = fieldTime(data, "createdAt"); err != nil {
		return domain.Coupon{}, err
	}
	if c.UpdatedAt, err = fieldTime(data, "updatedAt"); err != nil {
		return domain.Coupon{}, err
	}
	return c, nil
}
