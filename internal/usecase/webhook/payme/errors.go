package payme

import "fmt"

// Message is the localized error text Payme shows to the payer.
type Message struct {
	RU string `json:"ru"`
	UZ string `json:"uz"`
	EN string `json:"en"`
}

// Error is a Merchant API error object. Catalog entries below are values;
// handlers always get a fresh copy through err().
type Error struct {
	Code    int     `json:"code"`
	Message Message `json:"message"`
	Data    any     `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("payme error %d: %s", e.Code, e.Message.EN)
}

func (e Error) err() *Error {
	return &e
}

func (e Error) withData(data any) *Error {
	e.Data = data
	return &e
}

var (
	errInsufficientPrivilege = Error{Code: -32504, Message: Message{
		RU: "Недостаточно привилегий для выполнения метода",
		UZ: "Usulni bajarish uchun imtiyozlar yetarli emas",
		EN: "Insufficient privileges to perform this method",
	}}
	errParse = Error{Code: -32700, Message: Message{
		RU: "Ошибка парсинга JSON",
		UZ: "JSON tahlil qilishda xatolik",
		EN: "JSON parse error",
	}}
	errInvalidRequest = Error{Code: -32600, Message: Message{
		RU: "Неверный JSON-RPC объект",
		UZ: "Noto'g'ri JSON-RPC obyekti",
		EN: "Invalid JSON-RPC object",
	}}
	errMethodNotFound = Error{Code: -32601, Message: Message{
		RU: "Метод не найден",
		UZ: "Usul topilmadi",
		EN: "Method not found",
	}}
	errInternal = Error{Code: -32400, Message: Message{
		RU: "Системная ошибка",
		UZ: "Tizim xatosi",
		EN: "Internal system error",
	}}
	errInvalidAmount = Error{Code: -31001, Message: Message{
		RU: "Неверная сумма",
		UZ: "Noto'g'ri summa",
		EN: "Invalid amount",
	}}
	errTransactionNotFound = Error{Code: -31003, Message: Message{
		RU: "Транзакция не найдена",
		UZ: "Tranzaksiya topilmadi",
		EN: "Transaction not found",
	}}
	errCannotPerform = Error{Code: -31008, Message: Message{
		RU: "Невозможно выполнить операцию",
		UZ: "Amalni bajarib bo'lmaydi",
		EN: "Unable to perform operation",
	}}
	errOrderNotFound = Error{Code: -31050, Message: Message{
		RU: "Заказ не найден",
		UZ: "Buyurtma topilmadi",
		EN: "Order not found",
	}, Data: "order_id"}
	errOrderAlreadyPaid = Error{Code: -31051, Message: Message{
		RU: "Заказ уже оплачивается или оплачен",
		UZ: "Buyurtma allaqachon to'lanmoqda yoki to'langan",
		EN: "Order is already being paid or paid",
	}, Data: "order_id"}
)
