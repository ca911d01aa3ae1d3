package constants

// 商品分类常量
const (
	CategoryVegPickles    = "veg_pickles"
	CategoryNonVegPickles = "non_veg_pickles"
	CategorySnacks        = "snacks"
)

// 存储驱动常量
const (
	StoreDriverMemory   = "memory"
	StoreDriverSQL      = "sql"
	StoreDriverDynamoDB = "dynamodb"
)

// 购物车后端常量
const (
	CartBackendStore  = "store"
	CartBackendRedis  = "redis"
	CartBackendMemory = "memory"
)

// 购物车归属范围常量
const (
	CartScopeSession = "session"
	CartScopeUser    = "user"
)

// 订单号生成策略常量
const (
	OrderIDStrategyTimestamp = "timestamp"
	OrderIDStrategyUUID      = "uuid"
)

// 订单号时间格式（秒级）
const OrderIDTimestampLayout = "20060102150405"

// 提示消息类型常量
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// 事件驱动常量
const (
	EventsDriverNone  = "none"
	EventsDriverSNS   = "sns"
	EventsDriverKafka = "kafka"
)

// 事件类型常量
const (
	EventOrderPlaced = "order.placed"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskSendEmail = "email:send"
)

// 邮件类型常量
const (
	EmailKindTest              = "test"
	EmailKindOrderConfirmation = "order_confirmation"
)
