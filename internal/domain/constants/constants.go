package constants

import "time"

// Chat va Context konstantalari
const (
	// DefaultMaxContextSize chat tarixida saqlanadigan max xabarlar soni
	DefaultMaxContextSize = 60

	// DefaultMaxHistoryMessages transportga yuboriladigan tarix uzunligi
	DefaultMaxHistoryMessages = 10

	// DefaultSendCooldown bir xil matnni qayta yuborish bloklanadigan oyna
	DefaultSendCooldown = 3 * time.Second
)

// Katalog konstantalari
const (
	// DefaultCatalogPageSize catalog read endpointlari uchun sahifa hajmi
	DefaultCatalogPageSize = 50

	// MaxCatalogPages pagination metadata hech qachon tugamasa ham to'xtash chegarasi
	MaxCatalogPages = 200

	// MinMentionNameRunes va MinPriceDigits extractor qabul qilish chegaralari
	MinMentionNameRunes = 3
	MinPriceDigits      = 3

	// MinResolveRunes matcher uchun eng qisqa nom
	MinResolveRunes = 2

	// FuzzyAcceptScore token overlap uchun minimal ball
	FuzzyAcceptScore = 0.5

	// DefaultExtractMemoSize extraction memo sig'imi
	DefaultExtractMemoSize = 4096

	// EnrichmentConcurrency bir vaqtda bajariladigan image backfill so'rovlari
	EnrichmentConcurrency = 4
)

// Payment konstantalari
const (
	// DefaultPaymentPollInterval to'lov holatini tekshirish oralig'i
	DefaultPaymentPollInterval = 5 * time.Second

	// PaymentCheckTimeout bitta status so'rovi uchun timeout
	PaymentCheckTimeout = 10 * time.Second
)

// AI Model konstantalari
const (
	// GeminiModelName Gemini AI model nomi
	GeminiModelName = "gemini-2.5-flash"

	// AITemperature AI javob aniqlik darajasi (0.0-1.0)
	AITemperature = 0.3

	// AITopK Top-K sampling parametri
	AITopK = 20

	// AITopP Top-P sampling parametri
	AITopP = 0.9

	// MaxRetries AI ga so'rov yuborish uchun max urinishlar
	MaxRetries = 3

	// RetryDelay har bir urinish o'rtasidagi kutish vaqti (soniya)
	RetryDelay = 2
)

// Xabar konstantalari
const (
	// MenuExportFileName /menu eksport fayli nomi
	MenuExportFileName = "thuc-don.xlsx"

	// FallbackAssistantReply transport xatosida ko'rsatiladigan javob
	FallbackAssistantReply = "Xin lỗi, hệ thống đang bận. Bạn vui lòng thử lại sau ít phút nhé."
)
