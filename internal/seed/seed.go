package seed

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/temmie0232/ShiftManager/internal/domain"
	"github.com/temmie0232/ShiftManager/internal/planning"
	"github.com/temmie0232/ShiftManager/internal/repository"
	"github.com/temmie0232/ShiftManager/internal/utils"
)

// SeedEmployees 插入 n 个随机员工，返回成功插入的数量
func SeedEmployees(ctx context.Context, r *repository.Repository, n int, pin, emailDomain string) int {
	cnt := 0
	for i := 0; i < n; i++ {
		employee, err := utils.GenerateRandomEmployee(pin, emailDomain)
		if err != nil {
			slog.Error("无法生成随机员工", "error", err)
			continue
		}

		if err := r.CreateEmployee(ctx, employee); err != nil {
			slog.Error("无法插入员工", "username", employee.Username, "error", err)
			continue
		}

		cnt++
	}

	return cnt
}

// SeedPresets 为每个员工插入最多 n 个随机时间预设，名称冲突的直接跳过
func SeedPresets(ctx context.Context, r *repository.Repository, n int) int {
	employees, err := r.GetAllEmployees(ctx)
	if err != nil {
		slog.Error("无法获取所有员工", "error", err)
		return 0
	}

	cnt := 0
	for _, employee := range employees {
		for i := 0; i < n; i++ {
			preset := utils.GenerateRandomPreset(employee.ID)
			if err := utils.ValidateTimePreset(preset); err != nil {
				continue
			}
			if err := r.CreatePreset(ctx, preset); err != nil {
				slog.Warn("无法插入时间预设", "employeeID", employee.ID, "name", preset.Name, "error", err)
				continue
			}
			cnt++
		}
	}

	return cnt
}

// SeedHistory 为所有在职员工生成过去 months 个月的提交记录，已经提交过的周期不会覆盖
func SeedHistory(ctx context.Context, r *repository.Repository, now time.Time, months int) int {
	employees, err := r.GetAllEmployees(ctx)
	if err != nil {
		slog.Error("无法获取所有员工", "error", err)
		return 0
	}

	cnt := 0
	for _, employee := range employees {
		if !employee.IsActive || employee.Role != domain.RoleStaff {
			continue
		}

		presets, err := r.GetPresetsByEmployeeID(ctx, employee.ID)
		if err != nil {
			slog.Error("无法获取时间预设", "employeeID", employee.ID, "error", err)
			continue
		}

		for i := 1; i <= months; i++ {
			first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
			period := domain.Period{Year: first.Year(), Month: int(first.Month())}
			// 假设员工在上个月的 20 日前后提交
			submittedAt := first.AddDate(0, -1, 19).Add(time.Duration(rand.Intn(72)) * time.Hour)

			inserted, err := insertHistory(ctx, r, employee.ID, period, presets, submittedAt)
			if err != nil {
				slog.Error("无法插入提交记录", "employeeID", employee.ID, "period", period.String(), "error", err)
				continue
			}
			if inserted {
				cnt++
			}
		}
	}

	return cnt
}

func insertHistory(ctx context.Context, r *repository.Repository, employeeID int64, period domain.Period, presets []*domain.TimePreset, submittedAt time.Time) (bool, error) {
	key := domain.ShiftKey{EmployeeID: employeeID, Period: period}
	inserted := false

	err := r.WithTx(ctx, func(tx planning.Tx) error {
		status, err := tx.InsertSubmissionStatus(ctx, key, submittedAt)
		if err != nil {
			return err
		}
		if status.IsSubmitted {
			return nil
		}

		request := utils.GenerateRandomShiftRequest(employeeID, period, presets)
		request.SubmittedAt = submittedAt
		if err := tx.InsertShiftRequest(ctx, request); err != nil {
			return err
		}

		status.IsSubmitted = true
		status.SubmittedAt = &submittedAt
		if err := tx.UpdateSubmissionStatus(ctx, status); err != nil {
			return err
		}

		inserted = true
		return nil
	})

	return inserted, err
}
