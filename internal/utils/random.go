package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/temmie0232/ShiftManager/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateUsernameFromChineseName 取每个字拼音的前几个字母，再拼上随机数字
func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}
	if username == "" {
		username = "staff"
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomCapabilities() domain.Capabilities {
	return domain.Capabilities{
		CanOpen:          rand.Intn(2) == 0,
		CanCloseCleaning: rand.Intn(2) == 0,
		CanCloseCashier:  rand.Intn(2) == 0,
		CanCloseFloor:    rand.Intn(2) == 0,
		CanOrder:         rand.Intn(4) == 0,
	}
}

func GenerateRandomEmployee(pin string, emailDomainName string) (*domain.Employee, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	pinHash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	employee := &domain.Employee{
		Username:     username,
		PINHash:      string(pinHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         domain.RoleStaff,
		Capabilities: GenerateRandomCapabilities(),
	}

	return employee, nil
}

var presetColors = []string{"#ef4444", "#f59e0b", "#22c55e", "#3b82f6", "#a855f7"}

// GenerateRandomPreset 生成 3 到 9 小时的时间段，开始时间为整点或半点
func GenerateRandomPreset(employeeID int64) *domain.TimePreset {
	startMinutes := (rand.Intn(14) + 6) * 60
	if rand.Intn(2) == 0 {
		startMinutes += 30
	}
	endMinutes := startMinutes + (rand.Intn(7)+3)*60
	if endMinutes > 23*60+30 {
		endMinutes = 23*60 + 30
	}

	return &domain.TimePreset{
		EmployeeID: employeeID,
		Name:       fmt.Sprintf("时段%02d%02d", startMinutes/60, startMinutes%60),
		StartTime:  fmt.Sprintf("%02d:%02d", startMinutes/60, startMinutes%60),
		EndTime:    fmt.Sprintf("%02d:%02d", endMinutes/60, endMinutes%60),
		Color:      presetColors[rand.Intn(len(presetColors))],
	}
}

// GenerateRandomShiftRequest 为某个周期生成一条合法的提交记录，每天有一定概率可出勤或休息
func GenerateRandomShiftRequest(employeeID int64, period domain.Period, presets []*domain.TimePreset) *domain.ShiftRequest {
	minHours := int32(rand.Intn(40) + 10)
	minDays := int32(rand.Intn(4) + 1)

	request := &domain.ShiftRequest{
		EmployeeID:     employeeID,
		Year:           period.Year,
		Month:          period.Month,
		MinHours:       minHours,
		MaxHours:       minHours + int32(rand.Intn(40)),
		MinDaysPerWeek: minDays,
		MaxDaysPerWeek: minDays + int32(rand.Intn(int(7-minDays)+1)),
		Details:        make([]domain.ShiftDetail, 0),
	}

	first := time.Date(period.Year, time.Month(period.Month), 1, 0, 0, 0, 0, time.UTC)
	for day := first; day.Month() == first.Month(); day = day.AddDate(0, 0, 1) {
		switch rand.Intn(3) {
		case 0:
			continue
		case 1:
			request.Details = append(request.Details, domain.ShiftDetail{
				Date:      day.Format(domain.DateLayout),
				IsHoliday: true,
			})
		default:
			start, end := "09:00", "17:00"
			var color *string
			if len(presets) > 0 {
				preset := presets[rand.Intn(len(presets))]
				start, end = preset.StartTime, preset.EndTime
				c := preset.Color
				color = &c
			}
			request.Details = append(request.Details, domain.ShiftDetail{
				Date:      day.Format(domain.DateLayout),
				StartTime: &start,
				EndTime:   &end,
				Color:     color,
			})
		}
	}

	return request
}
