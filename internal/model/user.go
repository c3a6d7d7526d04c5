package model

import "time"

// swagger:model User
type User struct {
	BaseModel
	Email    string `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Password string `gorm:"size:100;not null" json:"-"`
	Username string `gorm:"size:100" json:"username"`
}

func (User) TableName() string {
	return "users"
}

// UserSummary 去除密码后的用户信息，所有对外的用户列表都使用它
type UserSummary struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserSummaryColumns 查询 UserSummary 时允许读取的列
var UserSummaryColumns = []string{"id", "email", "username", "created_at"}

func (u *User) Sanitize() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}
