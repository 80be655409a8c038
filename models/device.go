package models

import "time"

// Device is a registered client installation. FCMToken is the opaque push
// delivery token; the server never inspects it. PINHash, when set, is the
// bcrypt hash of the device's notebook lock PIN.
type Device struct {
	DeviceID   string    `bson:"deviceId" json:"deviceId"`
	DeviceName string    `bson:"deviceName" json:"deviceName"`
	FCMToken   string    `bson:"fcmToken" json:"-"`
	PINHash    string    `bson:"pinHash,omitempty" json:"-"`
	IP         string    `bson:"ip" json:"ip"`
	LastSeen   time.Time `bson:"lastSeen" json:"lastSeen"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}
