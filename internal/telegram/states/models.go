package states

import "strings"

type State string

const (
	StateNone State = "none"
)

// po  -> place order
// acp -> admin create product
// aep -> admin edit product

// place order states
const (
	PlaceOrderWaitItem        State = "po_wt_item"
	PlaceOrderWaitZone        State = "po_wt_zone"
	PlaceOrderWaitZoneConfirm State = "po_wt_zone_confirm"
	PlaceOrderWaitAddress     State = "po_wt_address"
	PlaceOrderWaitPhone       State = "po_wt_phone"
	PlaceOrderWaitTime        State = "po_wt_time"
	PlaceOrderWaitComment     State = "po_wt_comment"
	PlaceOrderWaitConfirm     State = "po_wt_confirm"
)

// admin create product states
const (
	AdminCreateProductWaitName         State = "acp_wt_name"
	AdminCreateProductWaitCategory     State = "acp_wt_category"
	AdminCreateProductWaitType         State = "acp_wt_type"
	AdminCreateProductWaitPotency      State = "acp_wt_potency"
	AdminCreateProductWaitPrice        State = "acp_wt_price"
	AdminCreateProductWaitDescription  State = "acp_wt_description"
	AdminCreateProductWaitSpecialOffer State = "acp_wt_special_offer"
)

// admin edit product states
const (
	AdminEditProductWaitProduct State = "aep_wt_product"
	AdminEditProductWaitField   State = "aep_wt_field"
	AdminEditProductWaitValue   State = "aep_wt_value"
)

func (s State) HasPrefix(prefix string) bool {
	return strings.HasPrefix(string(s), prefix)
}
