package models

import (
	"math"

	"gorm.io/gorm"

	"github.com/emrealmaoglu/trailium/internal/metrics"
)

// ItemProgress returns the completion percentage of an item. Items without
// sub-items are all or nothing.
func ItemProgress(isDone bool, doneSubItems, totalSubItems int64) int {
	if totalSubItems == 0 {
		if isDone {
			return 100
		}
		return 0
	}
	return roundHalfEven(float64(doneSubItems) / float64(totalSubItems) * 100)
}

// ListProgress returns the rounded mean of the items' cached progress.
func ListProgress(itemProgress []int) int {
	if len(itemProgress) == 0 {
		return 0
	}
	sum := 0
	for _, p := range itemProgress {
		sum += p
	}
	return roundHalfEven(float64(sum) / float64(len(itemProgress)))
}

func roundHalfEven(v float64) int {
	return int(math.RoundToEven(v))
}

// RecalculateItemProgress recomputes progress_cached for one item and writes it
// only when the value changed.
func RecalculateItemProgress(tx *gorm.DB, itemID uint) error {
	if itemID == 0 {
		return nil
	}

	var item TodoItem
	if err := tx.Select("id", "is_done", "progress_cached").Take(&item, itemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	var total, done int64
	if err := tx.Model(&TodoSubItem{}).Where("parent_id = ?", itemID).Count(&total).Error; err != nil {
		return err
	}
	if err := tx.Model(&TodoSubItem{}).Where("parent_id = ? AND is_done = ?", itemID, true).Count(&done).Error; err != nil {
		return err
	}

	metrics.Get().TodoProgressRecalculations.WithLabelValues("item").Inc()

	progress := ItemProgress(item.IsDone, done, total)
	if progress == item.ProgressCached {
		return nil
	}
	return tx.Model(&TodoItem{}).Where("id = ?", itemID).UpdateColumn("progress_cached", progress).Error
}

// RecalculateListProgress recomputes progress_cached for one list and writes it
// only when the value changed.
func RecalculateListProgress(tx *gorm.DB, listID uint) error {
	if listID == 0 {
		return nil
	}

	var list TodoList
	if err := tx.Select("id", "progress_cached").Take(&list, listID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	var values []int
	if err := tx.Model(&TodoItem{}).Where("list_id = ?", listID).Pluck("progress_cached", &values).Error; err != nil {
		return err
	}

	metrics.Get().TodoProgressRecalculations.WithLabelValues("list").Inc()

	progress := ListProgress(values)
	if progress == list.ProgressCached {
		return nil
	}
	return tx.Model(&TodoList{}).Where("id = ?", listID).UpdateColumn("progress_cached", progress).Error
}
