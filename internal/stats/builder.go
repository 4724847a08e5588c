// Package stats сворачивает строки счетчиков в статистику по проектам и версиям.
package stats

import "github.com/maynagashev/brewtrack/internal/models"

// Build группирует строки по проекту, затем по версии. Строки разных платформ
// одной версии суммируются. Итоги проекта всегда равны сумме по его версиям.
// Пустой вход дает пустую (не nil) карту.
func Build(rows []models.DownloadCounter) models.AggregatedStats {
	result := make(models.AggregatedStats)
	for _, row := range rows {
		project, ok := result[row.Project]
		if !ok {
			project = models.ProjectStats{Versions: make(map[string]models.VersionStats)}
		}

		version := project.Versions[row.Version]
		version.Downloads += row.DownloadCount
		version.Installs += row.InstallCount
		project.Versions[row.Version] = version

		project.TotalDownloads += row.DownloadCount
		project.TotalInstalls += row.InstallCount
		result[row.Project] = project
	}
	return result
}
