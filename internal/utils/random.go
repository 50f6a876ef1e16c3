package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
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

func randomDigits(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(digits[rand.Intn(len(digits))])
	}
	return sb.String()
}

// GenerateEmployeeIDFromChineseName 用姓名拼音首字母加 4 位数字生成员工编号，例如 张伟 -> ZW0421
func GenerateEmployeeIDFromChineseName(chineseName string) string {
	initials := ""
	for _, py := range pinyin.LazyConvert(chineseName, nil) {
		if py != "" {
			initials += strings.ToUpper(py[:1])
		}
	}
	return initials + randomDigits(4)
}

// GenerateEmailLocalPart 用完整拼音加随机数字生成邮箱前缀
func GenerateEmailLocalPart(chineseName string) string {
	return strings.Join(pinyin.LazyConvert(chineseName, nil), "") + randomDigits(rand.Intn(3)+1)
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	name := GenerateRandomChineseName()
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        GenerateEmailLocalPart(name) + "@" + emailDomainName,
		PasswordHash: string(passwordHash),
	}

	return user, nil
}

var letters = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ")

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

var modelNames = map[domain.AssetType][]string{
	domain.AssetTypeLaptop:   {"MacBook Pro 14", "ThinkPad X1 Carbon", "Dell XPS 13", "HP EliteBook 840"},
	domain.AssetTypePhone:    {"iPhone 15", "Pixel 8", "Galaxy S24", "小米 14"},
	domain.AssetTypeTablet:   {"iPad Air", "Galaxy Tab S9", "MatePad Pro"},
	domain.AssetTypeServer:   {"PowerEdge R750", "ProLiant DL380", "浪潮 NF5280M6"},
	domain.AssetTypeMouse:    {"MX Master 3S", "Magic Mouse"},
	domain.AssetTypeKeyboard: {"MX Keys", "Magic Keyboard", "HHKB Pro 2"},
	domain.AssetTypeMonitor:  {"Dell U2723QE", "LG 27UL850", "AOC Q27P2"},
	domain.AssetTypePrinter:  {"HP LaserJet M404", "Brother HL-L2350DW"},
}

// GenerateRandomAsset 生成一个随机资产，Assigned 状态的资产会带上持有人
func GenerateRandomAsset() *domain.Asset {
	assetType := domain.AssetTypes[rand.Intn(len(domain.AssetTypes))]
	models := modelNames[assetType]
	holder := GenerateRandomChineseName()

	asset := &domain.Asset{
		Name:         models[rand.Intn(len(models))],
		Type:         assetType,
		Status:       domain.AssetStatuses[rand.Intn(len(domain.AssetStatuses))],
		EmployeeID:   GenerateEmployeeIDFromChineseName(holder),
		SerialNumber: fmt.Sprintf("%s-%s", strings.ToUpper(string(assetType)[:3]), GenerateRandomID(4, 6)),
	}
	if asset.Status == domain.StatusAssigned {
		asset.AssignedTo = holder
	}

	return asset
}
