package payment

// Gateway response codes and the messages shown for them. "00" is the
// success code and never reaches this table; the store's verdict decides
// success. Everything here is a failure shade.
var responseMessages = map[string]string{
	"01": "Giao dịch đã tồn tại",
	"02": "Merchant không hợp lệ",
	"03": "Dữ liệu gửi sang không đúng định dạng",
	"04": "Khởi tạo giao dịch không thành công do website đang bị tạm khóa",
	"05": "Nhập sai mật khẩu thanh toán quá số lần quy định",
	"06": "Nhập sai mật khẩu xác thực giao dịch (OTP)",
	"07": "Giao dịch bị nghi ngờ gian lận",
	"08": "Hệ thống đang bảo trì, vui lòng thử lại sau",
	"09": "Thẻ/Tài khoản chưa đăng ký dịch vụ InternetBanking tại ngân hàng",
	"10": "Xác thực thông tin thẻ/tài khoản không đúng quá 3 lần",
	"11": "Đã hết hạn chờ thanh toán. Vui lòng thực hiện lại giao dịch.",
	"12": "Thẻ/Tài khoản bị khóa",
	"13": "Nhập sai mật khẩu xác thực giao dịch (OTP) quá số lần quy định",
	"24": "Quý khách đã hủy giao dịch",
	"51": "Tài khoản không đủ số dư để thực hiện giao dịch",
	"65": "Tài khoản đã vượt quá hạn mức giao dịch trong ngày",
	"75": "Ngân hàng thanh toán đang bảo trì",
	"79": "Nhập sai mật khẩu thanh toán quá số lần quy định",
	"97": "Chữ ký không hợp lệ",
	"99": "Lỗi không xác định, vui lòng liên hệ hỗ trợ",
}

const (
	// ack from the shopper's point of view: the order is cancelled, not
	// failed, when they backed out at the gateway themselves
	codeShopperCancelled = "24"

	msgPaid           = "Thanh toán thành công! Cảm ơn bạn đã mua hàng."
	msgGenericFailure = "Thanh toán không thành công. Vui lòng thử lại."
)
