package domain

// Server -> client events.
const (
	EventConnected               = "connected"
	EventNotificationConnected   = "notification_connected"
	EventInitialMessages         = "initial_messages"
	EventNewMessage              = "new_message"
	EventUserTyping              = "user_typing"
	EventMessageRead             = "message_read"
	EventError                   = "error"
	EventNewNotification         = "new_notification"
	EventNewAppointmentRequest   = "new_appointment_request"
	EventAppointmentStatusUpdate = "appointment_status_update"
)

// Client -> server events.
const (
	EventGetInitialMessages = "get_initial_messages"
	EventSendMessage        = "send_message"
	EventMarkAsRead         = "mark_as_read"
	// user_typing uses the same name in both directions
)
