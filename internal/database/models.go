package database

// Image is one indexed photo. Hash is the identity key.
type Image struct {
	ID         int64    `json:"id"`
	Path       string   `json:"path"`
	Hash       string   `json:"hash"`
	Extension  string   `json:"extension"`
	Filename   string   `json:"filename"`
	FolderName string   `json:"folder_name"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Tags       []string `json:"tags"`
	Root       string   `json:"root"`
}

// FolderInfo summarizes one folder within a root.
type FolderInfo struct {
	Name  string `json:"title"`
	Count int64  `json:"photo_count"`
	Root  string `json:"root"`
}

// RootInfo summarizes one scan root.
type RootInfo struct {
	Root        string `json:"root"`
	ImageCount  int64  `json:"photo_count"`
	FolderCount int64  `json:"folder_count"`
}

// RandomFilter narrows a random selection. Empty or "*" fields match anything.
type RandomFilter struct {
	Folder    string
	Root      string
	Tag       string
	Extension string
	Size      int
}

// FolderQuery pages through folders. Search is a substring match on the
// folder name; an empty or "*" Root matches every root.
type FolderQuery struct {
	Search  string
	Root    string
	Page    int
	PerPage int
}

// Settings are the gallery display preferences, stored as a single row.
type Settings struct {
	RandomEqualFolders int  `json:"random_equal_folders" yaml:"random_equal_folders"`
	PhotoPerRandom     int  `json:"photo_per_random" yaml:"photo_per_random"`
	FoldersPerPage     int  `json:"folders_per_page" yaml:"folders_per_page"`
	EqualEnabled       bool `json:"equal_enabled" yaml:"equal_enabled"`
}

func isAny(v string) bool {
	return v == "" || v == "*"
}
