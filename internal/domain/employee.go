package domain

import (
	"time"
)

type Role string

const (
	RoleStaff   Role = "员工"
	RoleManager Role = "店长"
)

// Capabilities 只由身份管理维护，排班流程不会读取这些标记
type Capabilities struct {
	CanOpen          bool `json:"canOpen"`
	CanCloseCleaning bool `json:"canCloseCleaning"`
	CanCloseCashier  bool `json:"canCloseCashier"`
	CanCloseFloor    bool `json:"canCloseFloor"`
	CanOrder         bool `json:"canOrder"`
}

type Employee struct {
	ID           int64        `json:"id"`
	Username     string       `json:"username"`
	FullName     string       `json:"fullName"`
	Email        string       `json:"email"`
	PINHash      string       `json:"-"`
	Role         Role         `json:"role"`
	Capabilities Capabilities `json:"capabilities"`
	IsActive     bool         `json:"isActive"`
	CreatedAt    time.Time    `json:"createdAt"`
	Version      int32        `json:"-"`
}

type TimePreset struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employeeID"`
	Name       string    `json:"name"`
	StartTime  string    `json:"startTime"`
	EndTime    string    `json:"endTime"`
	Color      string    `json:"color"`
	CreatedAt  time.Time `json:"createdAt"`
}
