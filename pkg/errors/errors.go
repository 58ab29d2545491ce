package errors

import "errors"

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 认证相关错误。
var (
	EmailAlreadyRegistered = Definition{Code: "EMAIL_ALREADY_REGISTERED", Message: "Email already registered"}
	InvalidEmailFormat     = Definition{Code: "INVALID_EMAIL_FORMAT", Message: "Invalid email format"}
	InvalidCredentials     = Definition{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password"}
	RefreshTokenInvalid    = Definition{Code: "REFRESH_TOKEN_INVALID", Message: "Refresh token invalid or expired"}
	Unauthorized           = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidUserID          = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
	UserNotFound           = Definition{Code: "USER_NOT_FOUND", Message: "User not found"}
	TooManyRequests        = Definition{Code: "TOO_MANY_REQUESTS", Message: "요청이 너무 잦습니다. 잠시 후 다시 시도해 주세요"}
)

// 行程计划模块错误。
var (
	PlanNotFound      = Definition{Code: "PLAN_NOT_FOUND", Message: "Plan not found"}
	PlanNotOwned      = Definition{Code: "PLAN_NOT_OWNED", Message: "Plan belongs to another user"}
	PlanNameRequired  = Definition{Code: "PLAN_NAME_REQUIRED", Message: "Plan name required"}
	PlanDataMalformed = Definition{Code: "PLAN_DATA_MALFORMED", Message: "Plan data malformed"}
)

// AI 生成模块错误。
var (
	AIPlanQuotaExceeded   = Definition{Code: "AIPLAN_QUOTA_EXCEEDED", Message: "AI plan generation quota exceeded"}
	AIPlanSliderRequired  = Definition{Code: "AIPLAN_SLIDER_REQUIRED", Message: "Slider verification required"}
	AIPlanSliderFailed    = Definition{Code: "AIPLAN_SLIDER_FAILED", Message: "Slider verification failed"}
	AIPlanDateRangeBad    = Definition{Code: "AIPLAN_DATE_RANGE_BAD", Message: "Start date must not be after end date"}
	AIPlanProviderFailure = Definition{Code: "AIPLAN_PROVIDER_FAILURE", Message: "AI plan provider request failed"}
)

// 搜索代理模块错误。
var (
	FlightSearchFailed = Definition{Code: "FLIGHT_SEARCH_FAILED", Message: "Flight search failed"}
	HotelSearchFailed  = Definition{Code: "HOTEL_SEARCH_FAILED", Message: "Hotel search failed"}
	GeocodeFailed      = Definition{Code: "GEOCODE_FAILED", Message: "City could not be geocoded"}
	WeatherUnavailable = Definition{Code: "WEATHER_UNAVAILABLE", Message: "Weather data unavailable"}
	InvalidCoordinates = Definition{Code: "INVALID_COORDINATES", Message: "Invalid coordinates"}
)

// 提醒模块错误。
var (
	ReminderChannelInvalid = Definition{Code: "REMINDER_CHANNEL_INVALID", Message: "Reminder channel invalid"}
)

// 基础设施哨兵错误。
var (
	ErrTokenGeneratorNotInitialized = errors.New("token generator not initialized")
	ErrUnsupportedCaptchaProvider   = errors.New("unsupported captcha provider")
	ErrUnsupportedSMSProvider       = errors.New("unsupported sms provider")
	ErrUnsupportedAIPlanProvider    = errors.New("unsupported ai plan provider")
	ErrInvalidToken                 = errors.New("invalid token")
	ErrInvalidTokenClaims           = errors.New("invalid token claims")
	ErrInvalidTokenType             = errors.New("invalid token type")
	ErrUserIDNotFound               = errors.New("user id not found in token")
	ErrCaptchaTokenRequired         = errors.New("captcha verify token is required")
	ErrCaptchaResponseNil           = errors.New("captcha response is nil")
	ErrCaptchaVerificationFailed    = errors.New("captcha verification failed")
)

// SkipMessageError 表示消息应当被确认并跳过（幂等去重命中等场景），
// 消费者据此 Ack 而不是 Nack 重投。
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return "skip message: " + e.Reason
}

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	EmailAlreadyRegistered.Code: EmailAlreadyRegistered,
	InvalidEmailFormat.Code:     InvalidEmailFormat,
	InvalidCredentials.Code:     InvalidCredentials,
	RefreshTokenInvalid.Code:    RefreshTokenInvalid,
	Unauthorized.Code:           Unauthorized,
	InvalidUserID.Code:          InvalidUserID,
	UserNotFound.Code:           UserNotFound,
	TooManyRequests.Code:        TooManyRequests,
	PlanNotFound.Code:           PlanNotFound,
	PlanNotOwned.Code:           PlanNotOwned,
	PlanNameRequired.Code:       PlanNameRequired,
	PlanDataMalformed.Code:      PlanDataMalformed,
	AIPlanQuotaExceeded.Code:    AIPlanQuotaExceeded,
	AIPlanSliderRequired.Code:   AIPlanSliderRequired,
	AIPlanSliderFailed.Code:     AIPlanSliderFailed,
	AIPlanDateRangeBad.Code:     AIPlanDateRangeBad,
	AIPlanProviderFailure.Code:  AIPlanProviderFailure,
	FlightSearchFailed.Code:     FlightSearchFailed,
	HotelSearchFailed.Code:      HotelSearchFailed,
	GeocodeFailed.Code:          GeocodeFailed,
	WeatherUnavailable.Code:     WeatherUnavailable,
	InvalidCoordinates.Code:     InvalidCoordinates,
	ReminderChannelInvalid.Code: ReminderChannelInvalid,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
