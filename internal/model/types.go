package model

// Gender 取值 M/F
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// Goal 描述用户的体成分目标
type Goal string

const (
	GoalCut      Goal = "emagrecer"
	GoalMaintain Goal = "manter"
	GoalBulk     Goal = "hipertrofia"
)

// Activity 为引导问卷中采集的活动水平
type Activity string

const (
	ActivitySedentary Activity = "sedentario"
	ActivityLight     Activity = "leve"
	ActivityModerate  Activity = "moderado"
	ActivityIntense   Activity = "intenso"
)

// Valid reports whether g is one of the supported genders.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Valid reports whether g is one of the supported goals.
func (g Goal) Valid() bool {
	switch g {
	case GoalCut, GoalMaintain, GoalBulk:
		return true
	}
	return false
}

// Valid reports whether a is one of the supported activity levels.
func (a Activity) Valid() bool {
	switch a {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityIntense:
		return true
	}
	return false
}

// Account 是以规范化用户名为主键的本地账号记录。
// LegacyPassword 只在旧版明文记录中出现，登录成功后会被迁移为 bcrypt 哈希。
type Account struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	PasswordHash   string `json:"passwordHash,omitempty"`
	LegacyPassword string `json:"password,omitempty"`
}

// Session 指向当前登录的账号，独立于账号记录持久化。
// Token 只在服务端与会话 cookie 中出现，不随 API 响应返回。
type Session struct {
	Username string `json:"username"`
	ID       string `json:"id"`
	Token    string `json:"-"`
}

// Macros 是热量与三大营养素的组合
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Add returns the field-wise sum of m and other.
func (m Macros) Add(other Macros) Macros {
	return Macros{
		Calories: m.Calories + other.Calories,
		Protein:  m.Protein + other.Protein,
		Carbs:    m.Carbs + other.Carbs,
		Fat:      m.Fat + other.Fat,
	}
}

// WeightRecord 一次体重记录，追加后不可修改
type WeightRecord struct {
	Weight    float64 `json:"weight"`
	Date      string  `json:"date"`
	Timestamp int64   `json:"timestamp"`
}

// DietStrategy 由 AI 协作方生成的饮食策略
type DietStrategy struct {
	Strategy           string   `json:"strategy"`
	Explanation        string   `json:"explanation"`
	RecommendedFoods   []string `json:"recommendedFoods"`
	RecommendedTargets *Macros  `json:"recommendedTargets,omitempty"`
}

// Profile 每个账号唯一的档案，引导流程完成时创建
type Profile struct {
	Name               string         `json:"name"`
	BirthDate          string         `json:"birthDate"`
	Height             string         `json:"height"`
	Weight             string         `json:"weight"`
	Gender             Gender         `json:"gender"`
	Goal               Goal           `json:"goal"`
	Activity           Activity       `json:"activity"`
	BodyShape          BodyShape      `json:"bodyShape"`
	Avatar             string         `json:"avatar,omitempty"`
	EstimatedBF        float64        `json:"estimatedBF"`
	TDEE               float64        `json:"tdee"`
	Targets            Macros         `json:"targets"`
	DietStrategy       *DietStrategy  `json:"dietStrategy,omitempty"`
	LastStrategyUpdate int64          `json:"lastStrategyUpdate,omitempty"`
	WeightHistory      []WeightRecord `json:"weightHistory"`
}

// BodyShape 引导问卷里的体型回答，保存问卷标签，未回答为空
type BodyShape struct {
	Abdomen     string `json:"abdomen,omitempty"`
	LoveHandles string `json:"loveHandles,omitempty"`
	UpperBody   string `json:"upperBody,omitempty"`
	LowerBody   string `json:"lowerBody,omitempty"`
	FaceNeck    string `json:"faceNeck,omitempty"`
}

// FoodItem 单个食物的估算，按重量等比缩放
type FoodItem struct {
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Macros returns the nutritional part of the item.
func (f FoodItem) Macros() Macros {
	return Macros{Calories: f.Calories, Protein: f.Protein, Carbs: f.Carbs, Fat: f.Fat}
}

// FoodAnalysis 是一次图片分析的结果，加入日记前不会持久化
type FoodAnalysis struct {
	Items  []FoodItem `json:"items"`
	Totals Macros     `json:"totals"`
}

// DiaryEntry 一餐的日记记录；Date 是本地日历日的展示字符串，用于按天聚合
type DiaryEntry struct {
	ID        int64      `json:"id"`
	Time      string     `json:"time"`
	Date      string     `json:"date"`
	Timestamp int64      `json:"timestamp"`
	Totals    Macros     `json:"totals"`
	Items     []FoodItem `json:"items"`
}

// InsightType 洞察的分类
type InsightType string

const (
	InsightSuccess InsightType = "success"
	InsightWarning InsightType = "warning"
	InsightInfo    InsightType = "info"
)

// Insight 日记模式洞察
type Insight struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Type        InsightType `json:"type"`
}
