package domain

type Response struct {
	ChatID   int64
	Text     string
	File     *File
	Keyboard *Keyboard
	Err      error
}

type File struct {
	Name string
	Data []byte
}

type Keyboard struct {
	Title         string
	Buttons       []Button
	ButtonsPerRow int
}

type Button struct {
	Label string
	Data  string
}
