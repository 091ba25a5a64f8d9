package checkout

import "errors"

var (
	ErrNotSignedIn     = errors.New("no signed-in account")
	ErrEmptyCart       = errors.New("cart is empty, nothing to checkout")
	ErrNoPaymentMethod = errors.New("no payment method chosen")
)

// ValidationError is a local, pre-network failure the user must correct.
// Message is already localized for display.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// User-facing messages. The storefront ships in Vietnamese only.
const (
	msgNotSignedIn     = "Vui lòng đăng nhập để đặt hàng"
	msgEmptyCart       = "Giỏ hàng trống. Hãy thêm sản phẩm trước khi thanh toán."
	msgNoPaymentMethod = "Vui lòng chọn phương thức thanh toán"
	msgSubmitFailed    = "Không thể tạo đơn hàng. Vui lòng thử lại."

	msgMissingFullName = "Vui lòng nhập họ và tên"
	msgInvalidPhone    = "Số điện thoại không hợp lệ"
	msgMissingPhone    = "Vui lòng nhập số điện thoại"
	msgInvalidEmail    = "Email không hợp lệ"
	msgMissingAddress  = "Vui lòng nhập địa chỉ chi tiết"
	msgMissingCity     = "Vui lòng chọn thành phố"
	msgMissingDistrict = "Vui lòng chọn quận/huyện"
)

// Message returns the localized text for any checkout error.
func Message(err error) string {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrNotSignedIn):
		return msgNotSignedIn
	case errors.Is(err, ErrEmptyCart):
		return msgEmptyCart
	case errors.Is(err, ErrNoPaymentMethod):
		return msgNoPaymentMethod
	}
	return msgSubmitFailed
}
