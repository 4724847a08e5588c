package models

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Ключи итоговых значений в JSON проекта. Версии с такими именами не принимаются парсером.
const (
	TotalDownloadsKey = "total_downloads"
	TotalInstallsKey  = "total_installs"
)

// VersionStats - счетчики одной версии (все платформы суммированы).
type VersionStats struct {
	Downloads int64 `json:"downloads"`
	Installs  int64 `json:"installs"`
}

// ProjectStats - агрегированная статистика по проекту.
type ProjectStats struct {
	TotalDownloads int64
	TotalInstalls  int64
	Versions       map[string]VersionStats
}

// AggregatedStats - статистика по всем проектам, ключ - имя проекта.
type AggregatedStats map[string]ProjectStats

// MarshalJSON кодирует проект в плоский объект: итоги и версии на одном уровне.
//
//	{"total_downloads": 2, "total_installs": 2, "2.17.7": {"downloads": 2, "installs": 2}}
func (p ProjectStats) MarshalJSON() ([]byte, error) {
	versions := make([]string, 0, len(p.Versions))
	for v := range p.Versions {
		versions = append(versions, v)
	}
	sort.Strings(versions)

	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeField(&buf, TotalDownloadsKey, p.TotalDownloads); err != nil {
		return nil, err
	}
	buf.WriteByte(',')
	if err := writeField(&buf, TotalInstallsKey, p.TotalInstalls); err != nil {
		return nil, err
	}
	for _, v := range versions {
		buf.WriteByte(',')
		if err := writeField(&buf, v, p.Versions[v]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON разбирает плоский объект проекта обратно в ProjectStats.
func (p *ProjectStats) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := ProjectStats{Versions: make(map[string]VersionStats, len(raw))}
	for key, value := range raw {
		var err error
		switch key {
		case TotalDownloadsKey:
			err = json.Unmarshal(value, &out.TotalDownloads)
		case TotalInstallsKey:
			err = json.Unmarshal(value, &out.TotalInstalls)
		default:
			var vs VersionStats
			err = json.Unmarshal(value, &vs)
			out.Versions[key] = vs
		}
		if err != nil {
			return err
		}
	}
	*p = out
	return nil
}

func writeField(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}
