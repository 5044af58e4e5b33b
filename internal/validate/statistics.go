package validate

import (
	"github.com/FullMetalEd/fm-dicom/dicom"
	"github.com/FullMetalEd/fm-dicom/dicom/tag"
)

// computeStatistics derives the collection-level summary statistics from
// every successfully parsed dataset.
func computeStatistics(datasets map[string]*dicom.DataSet) Statistics {
	stats := Statistics{
		ModalityHistogram: make(map[string]int),
		TagPresenceCounts: make(map[string]int),
	}

	patients := make(map[string]bool)
	studies := make(map[string]bool)
	series := make(map[string]bool)

	for _, ds := range datasets {
		stats.TotalInstances++

		if modality := stringValue(ds, tag.Modality); modality != "" {
			stats.ModalityHistogram[modality]++
		}
		if pid := stringValue(ds, tag.PatientID); pid != "" {
			patients[pid] = true
		}
		if studyUID := stringValue(ds, tag.StudyInstanceUID); studyUID != "" {
			studies[studyUID] = true
		}
		if seriesUID := stringValue(ds, tag.SeriesInstanceUID); seriesUID != "" {
			series[seriesUID] = true
		}

		for _, elem := range ds.Elements() {
			if elem.Value().String() == "" {
				continue
			}
			info, err := tag.Find(elem.Tag())
			if err != nil {
				continue
			}
			stats.TagPresenceCounts[info.Keyword]++
		}
	}

	stats.UniquePatients = len(patients)
	stats.UniqueStudies = len(studies)
	stats.UniqueSeries = len(series)

	if stats.TotalInstances > 0 {
		stats.TagPresencePercent = make(map[string]float64, len(stats.TagPresenceCounts))
		for keyword, count := range stats.TagPresenceCounts {
			stats.TagPresencePercent[keyword] = 100 * float64(count) / float64(stats.TotalInstances)
		}
	}

	return stats
}
