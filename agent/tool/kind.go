package tool

// Kind is the closed set of tools the concierge exposes.
type Kind int

const (
	KindUnknown Kind = iota
	KindFindParking
	KindGetShopInfo
	KindAddPoints
	KindRedeemCoupon
)

const (
	ToolFindParking  = "find_parking"
	ToolGetShopInfo  = "get_shop_info"
	ToolAddPoints    = "add_points"
	ToolRedeemCoupon = "redeem_coupon"
)

// UserIDArg is the argument key the loop overwrites for account tools.
const UserIDArg = "user_id"

var kinds = []Kind{KindFindParking, KindGetShopInfo, KindAddPoints, KindRedeemCoupon}

func ParseKind(name string) Kind {
	switch name {
	case ToolFindParking:
		return KindFindParking
	case ToolGetShopInfo:
		return KindGetShopInfo
	case ToolAddPoints:
		return KindAddPoints
	case ToolRedeemCoupon:
		return KindRedeemCoupon
	default:
		return KindUnknown
	}
}

func (k Kind) String() string {
	switch k {
	case KindFindParking:
		return ToolFindParking
	case KindGetShopInfo:
		return ToolGetShopInfo
	case KindAddPoints:
		return ToolAddPoints
	case KindRedeemCoupon:
		return ToolRedeemCoupon
	default:
		return "unknown"
	}
}

// RequiresUser reports whether the tool acts on the caller's account. The
// user id for these tools always comes from the caller, never the model.
func (k Kind) RequiresUser() bool {
	return k == KindAddPoints || k == KindRedeemCoupon
}
