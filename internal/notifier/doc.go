// Package notifier delivers a rendered draw to the configured channels.
//
// # Channels
//
// Two fixed channels exist: a DingTalk chat webhook (package dingtalk) and an
// HTML email (package email). Dispatcher sends to both in order; a failure on
// one channel is logged and never blocks or rolls back the other.
//
// # Retry
//
// Retry runs an operation a bounded number of times with a fixed delay. Only
// email uses it; the chat webhook is sent once.
package notifier
