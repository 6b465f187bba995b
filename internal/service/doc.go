// Package service coordinates the task store, the reminder scheduler and
// the notification hub. It is the only place where a storage change and a
// schedule change happen together, which keeps the store and the armed
// timers consistent as seen by the next list call.
package service
