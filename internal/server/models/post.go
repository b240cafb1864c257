package models

import "time"

type Post struct {
	ID        int64     `db:"id"`
	AccessKey string    `db:"access_key"`
	UserID    int64     `db:"user_id"`
	Author    string    `db:"author"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
}

type Comment struct {
	ID        int64     `db:"id"`
	AccessKey string    `db:"access_key"`
	PostID    int64     `db:"post_id"`
	UserID    int64     `db:"user_id"`
	Author    string    `db:"author"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
}
