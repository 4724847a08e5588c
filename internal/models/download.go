package models

import "time"

// BottleIdentity описывает бутылку, извлеченную из запроса на скачивание.
// Не хранится в БД, вычисляется из URL.
type BottleIdentity struct {
	Project  string `json:"project"`
	Version  string `json:"version"`
	Platform string `json:"platform"`
	// Rebuild - номер пересборки бутылки (`.bottle.1.tar.gz`), 0 если его нет.
	// В ключ счетчика не входит.
	Rebuild int `json:"rebuild,omitempty"`
}

// Key возвращает ключ счетчика для бутылки.
func (b BottleIdentity) Key() CounterKey {
	return CounterKey{Project: b.Project, Version: b.Version, Platform: b.Platform}
}

// CounterKey - уникальный ключ строки счетчика (project, version, platform).
type CounterKey struct {
	Project  string
	Version  string
	Platform string
}

// DownloadCounter представляет строку таблицы brew_downloads.
// Тэги `db` используются для маппинга с полями БД с помощью sqlx.
type DownloadCounter struct {
	ID            int64     `db:"id" json:"id"`
	Project       string    `db:"project" json:"project"`
	Version       string    `db:"version" json:"version"`
	Platform      string    `db:"platform" json:"platform"`
	DownloadCount int64     `db:"download_count" json:"download_count"`
	InstallCount  int64     `db:"install_count" json:"install_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
