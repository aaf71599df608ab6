package model

import "torrent-vault/metainfo"

type File struct {
	Length int64    `bson:"length" json:"length"`
	Paths  []string `bson:"paths" json:"paths"`
	MD5Sum *string  `bson:"md5sum,omitempty" json:"md5sum,omitempty"`
}

func NewFileFromEntry(entry metainfo.FileEntry) *File {
	return &File{
		Length: entry.Length,
		Paths:  append([]string(nil), entry.Path...),
		MD5Sum: entry.MD5Sum,
	}
}

func (f *File) Entry() metainfo.FileEntry {
	return metainfo.FileEntry{
		Path:   append([]string(nil), f.Paths...),
		Length: f.Length,
		MD5Sum: f.MD5Sum,
	}
}
