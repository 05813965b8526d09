package model

import "time"

// Historia 是“história”页面的内容，只读取最新的一行
type Historia struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Conteudo  string    `json:"conteudo" gorm:"type:text;not null" validate:"required"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName 指定表名
func (Historia) TableName() string {
	return "historia"
}
