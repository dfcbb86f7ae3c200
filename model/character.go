package model

import "strings"

// Status 角色存活状态
type Status string

const (
	StatusAlive   Status = "Alive"
	StatusDead    Status = "Dead"
	StatusUnknown Status = "unknown"
)

// Gender 角色性别
type Gender string

const (
	GenderFemale     Gender = "Female"
	GenderMale       Gender = "Male"
	GenderGenderless Gender = "Genderless"
	GenderUnknown    Gender = "unknown"
)

// Location 出生地或当前位置
type Location struct {
	Name      string `json:"name"`
	Dimension string `json:"dimension,omitempty"`
}

// Episode 剧集引用
type Episode struct {
	ID      EpisodeID `json:"id"`
	Name    string    `json:"name"`
	Episode string    `json:"episode"`
}

// Character 角色详情
type Character struct {
	ID       CharacterID `json:"id"`
	Name     string      `json:"name"`
	Status   Status      `json:"status"`
	Species  string      `json:"species"`
	Type     string      `json:"type"`
	Gender   Gender      `json:"gender"`
	Origin   Location    `json:"origin"`
	Location Location    `json:"location"`
	Image    string      `json:"image"`
	Episode  []Episode   `json:"episode"`
	Created  string      `json:"created"`
}

// CharacterBasic 列表视图使用的精简角色
type CharacterBasic struct {
	ID      CharacterID `json:"id"`
	Name    string      `json:"name"`
	Image   string      `json:"image"`
	Species string      `json:"species"`
	Status  Status      `json:"status"`
	Gender  Gender      `json:"gender"`
}

// DeletedCharacter 已删除视图展示的数据
type DeletedCharacter struct {
	ID      CharacterID `json:"id"`
	Name    string      `json:"name"`
	Image   string      `json:"image"`
	Species string      `json:"species"`
}

// PageInfo 分页信息，Next/Prev 为 nil 表示没有
type PageInfo struct {
	Count int  `json:"count"`
	Pages int  `json:"pages"`
	Next  *int `json:"next"`
	Prev  *int `json:"prev"`
}

// CharacterPage 一页角色
type CharacterPage struct {
	Info    PageInfo         `json:"info"`
	Results []CharacterBasic `json:"results"`
}

// PageSize 上游每页固定 20 条
const PageSize = 20

// StatusColorClass 返回状态对应的样式类名
func StatusColorClass(status string) string {
	switch strings.ToLower(status) {
	case "alive":
		return "bg-success"
	case "dead":
		return "bg-danger"
	default:
		return "bg-neutral-400"
	}
}
