package metainfo

import (
	"strconv"

	"torrent-vault/bencode"
)

// FromValue validates v and builds a TorrentMetainfo from it. Empty optional
// strings and an empty announce-list are treated as absent, and empty tiers
// are dropped, so that FromValue(ToValue(m)) round-trips. Unknown keys are
// ignored.
func FromValue(v bencode.Value) (*TorrentMetainfo, error) {
	top, ok := v.(*bencode.Dict)
	if !ok {
		return nil, schemaErrorf("", "top-level value is a %s, want dict", kindOf(v))
	}
	rawInfo, ok := top.Get(keyInfo)
	if !ok {
		return nil, schemaErrorf(keyInfo, "missing")
	}
	info, ok := rawInfo.(*bencode.Dict)
	if !ok {
		return nil, schemaErrorf(keyInfo, "is a %s, want dict", kindOf(rawInfo))
	}

	m := &TorrentMetainfo{}
	var err error
	if m.Announce, err = requiredString(top, keyAnnounce, keyAnnounce); err != nil {
		return nil, err
	}
	if m.AnnounceList, err = announceList(top); err != nil {
		return nil, err
	}
	if m.CreationDate, err = optionalInt(top, keyCreationDate, keyCreationDate); err != nil {
		return nil, err
	}
	if m.Comment, err = optionalString(top, keyComment, keyComment); err != nil {
		return nil, err
	}
	if m.CreatedBy, err = optionalString(top, keyCreatedBy, keyCreatedBy); err != nil {
		return nil, err
	}
	if m.Encoding, err = optionalString(top, keyEncoding, keyEncoding); err != nil {
		return nil, err
	}

	if m.Name, err = requiredString(info, keyName, "info.name"); err != nil {
		return nil, err
	}
	if m.PieceLength, err = optionalInt(info, keyPieceLength, "info.piece length"); err != nil {
		return nil, err
	}
	pieces, err := requiredString(info, keyPieces, "info.pieces")
	if err != nil {
		return nil, err
	}
	if m.PieceHashes, err = splitPieces([]byte(pieces)); err != nil {
		return nil, err
	}
	if m.Private, err = privateFlag(info); err != nil {
		return nil, err
	}

	if m.Layout, err = layoutFromInfo(info); err != nil {
		return nil, err
	}
	return m, nil
}

func layoutFromInfo(info *bencode.Dict) (Layout, error) {
	hasLength, hasFiles := info.Has(keyLength), info.Has(keyFiles)
	switch {
	case hasLength && hasFiles:
		return nil, schemaErrorf("info", "both length and files present")
	case !hasLength && !hasFiles:
		return nil, schemaErrorf("info", "neither length nor files present")
	case hasLength:
		length, err := requiredLength(info, "info.length")
		if err != nil {
			return nil, err
		}
		md5sum, err := optionalMD5Sum(info, "info.md5sum")
		if err != nil {
			return nil, err
		}
		return SingleFile{Length: length, MD5Sum: md5sum}, nil
	}

	rawFiles, _ := info.Get(keyFiles)
	list, ok := rawFiles.(bencode.List)
	if !ok {
		return nil, schemaErrorf("info.files", "is a %s, want list", kindOf(rawFiles))
	}
	if len(list) == 0 {
		return nil, schemaErrorf("info.files", "empty")
	}
	files := make([]FileEntry, 0, len(list))
	for i, item := range list {
		field := "info.files." + strconv.Itoa(i)
		entry, ok := item.(*bencode.Dict)
		if !ok {
			return nil, schemaErrorf(field, "is a %s, want dict", kindOf(item))
		}
		f, err := fileEntry(entry, field)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return MultiFile{Files: files}, nil
}

func fileEntry(entry *bencode.Dict, field string) (FileEntry, error) {
	f := FileEntry{}
	var err error
	if f.Length, err = requiredLength(entry, field+".length"); err != nil {
		return f, err
	}
	if f.MD5Sum, err = optionalMD5Sum(entry, field+".md5sum"); err != nil {
		return f, err
	}
	rawPath, ok := entry.Get(keyPath)
	if !ok {
		return f, schemaErrorf(field+".path", "missing")
	}
	segments, ok := rawPath.(bencode.List)
	if !ok {
		return f, schemaErrorf(field+".path", "is a %s, want list", kindOf(rawPath))
	}
	if len(segments) == 0 {
		return f, schemaErrorf(field+".path", "empty")
	}
	f.Path = make([]string, 0, len(segments))
	for i, seg := range segments {
		b, ok := seg.(bencode.Bytes)
		if !ok {
			return f, schemaErrorf(field+".path."+strconv.Itoa(i), "is a %s, want bytes", kindOf(seg))
		}
		f.Path = append(f.Path, string(b))
	}
	return f, nil
}

func announceList(top *bencode.Dict) ([][]string, error) {
	raw, ok := top.Get(keyAnnounceList)
	if !ok {
		return nil, nil
	}
	tiers, ok := raw.(bencode.List)
	if !ok {
		return nil, schemaErrorf(keyAnnounceList, "is a %s, want list", kindOf(raw))
	}
	var ret [][]string
	for i, rawTier := range tiers {
		tier, ok := rawTier.(bencode.List)
		if !ok {
			return nil, schemaErrorf(keyAnnounceList+"."+strconv.Itoa(i), "is a %s, want list", kindOf(rawTier))
		}
		if len(tier) == 0 {
			continue
		}
		urls := make([]string, 0, len(tier))
		for j, rawURL := range tier {
			url, ok := rawURL.(bencode.Bytes)
			if !ok {
				return nil, schemaErrorf(keyAnnounceList+"."+strconv.Itoa(i)+"."+strconv.Itoa(j), "is a %s, want bytes", kindOf(rawURL))
			}
			urls = append(urls, string(url))
		}
		ret = append(ret, urls)
	}
	return ret, nil
}

func requiredString(d *bencode.Dict, key string, field string) (string, error) {
	raw, ok := d.Get(key)
	if !ok {
		return "", schemaErrorf(field, "missing")
	}
	b, ok := raw.(bencode.Bytes)
	if !ok {
		return "", schemaErrorf(field, "is a %s, want bytes", kindOf(raw))
	}
	return string(b), nil
}

func optionalString(d *bencode.Dict, key string, field string) (*string, error) {
	if !d.Has(key) {
		return nil, nil
	}
	s, err := requiredString(d, key, field)
	if err != nil || s == "" {
		return nil, err
	}
	return &s, nil
}

// optionalInt rejects negative values; it reads sizes and timestamps. A present
// zero is kept.
func optionalInt(d *bencode.Dict, key string, field string) (*int64, error) {
	raw, ok := d.Get(key)
	if !ok {
		return nil, nil
	}
	i, ok := raw.(bencode.Int)
	if !ok {
		return nil, schemaErrorf(field, "is a %s, want int", kindOf(raw))
	}
	if i < 0 {
		return nil, schemaErrorf(field, "negative value %d", i)
	}
	ret := int64(i)
	return &ret, nil
}

// privateFlag reads info.private, where any nonzero integer means private.
func privateFlag(info *bencode.Dict) (bool, error) {
	raw, ok := info.Get(keyPrivate)
	if !ok {
		return false, nil
	}
	i, ok := raw.(bencode.Int)
	if !ok {
		return false, schemaErrorf("info.private", "is a %s, want int", kindOf(raw))
	}
	return i != 0, nil
}

func requiredLength(d *bencode.Dict, field string) (int64, error) {
	if !d.Has(keyLength) {
		return 0, schemaErrorf(field, "missing")
	}
	i, err := optionalInt(d, keyLength, field)
	if err != nil {
		return 0, err
	}
	return *i, nil
}

func optionalMD5Sum(d *bencode.Dict, field string) (*string, error) {
	s, err := optionalString(d, keyMD5Sum, field)
	if err != nil || s == nil {
		return nil, err
	}
	if !isHex(*s, 32) {
		return nil, schemaErrorf(field, "%q is not 32 hex characters", *s)
	}
	return s, nil
}

func isHex(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// ToValue builds the bencode tree for m. Absent or empty optional fields are
// omitted; optional integers set to zero are kept. The only error is a layout
// that is nil or carries invalid data, which a value built by FromValue never
// has.
func ToValue(m *TorrentMetainfo) (bencode.Value, error) {
	if m == nil {
		return nil, schemaErrorf("", "nil metainfo")
	}
	top := bencode.NewDict()
	top.Set(keyAnnounce, bencode.Bytes(m.Announce))
	if tiers := announceListValue(m.AnnounceList); len(tiers) > 0 {
		top.Set(keyAnnounceList, tiers)
	}
	setInt(top, keyCreationDate, m.CreationDate)
	setString(top, keyComment, m.Comment)
	setString(top, keyCreatedBy, m.CreatedBy)
	setString(top, keyEncoding, m.Encoding)

	info := bencode.NewDict()
	info.Set(keyName, bencode.Bytes(m.Name))
	setInt(info, keyPieceLength, m.PieceLength)
	info.Set(keyPieces, bencode.Bytes(joinPieces(m.PieceHashes)))
	if m.Private {
		info.Set(keyPrivate, bencode.Int(1))
	}
	switch layout := m.Layout.(type) {
	case SingleFile:
		info.Set(keyLength, bencode.Int(layout.Length))
		setString(info, keyMD5Sum, layout.MD5Sum)
	case MultiFile:
		if len(layout.Files) == 0 {
			return nil, schemaErrorf("info.files", "empty")
		}
		files := make(bencode.List, 0, len(layout.Files))
		for i, f := range layout.Files {
			if len(f.Path) == 0 {
				return nil, schemaErrorf("info.files."+strconv.Itoa(i)+".path", "empty")
			}
			entry := bencode.NewDict()
			entry.Set(keyLength, bencode.Int(f.Length))
			setString(entry, keyMD5Sum, f.MD5Sum)
			path := make(bencode.List, 0, len(f.Path))
			for _, seg := range f.Path {
				path = append(path, bencode.Bytes(seg))
			}
			entry.Set(keyPath, path)
			files = append(files, entry)
		}
		info.Set(keyFiles, files)
	default:
		return nil, schemaErrorf("info", "layout is neither single-file nor multi-file")
	}
	top.Set(keyInfo, info)
	return top, nil
}

func announceListValue(tiers [][]string) bencode.List {
	ret := make(bencode.List, 0, len(tiers))
	for _, tier := range tiers {
		if len(tier) == 0 {
			continue
		}
		urls := make(bencode.List, 0, len(tier))
		for _, url := range tier {
			urls = append(urls, bencode.Bytes(url))
		}
		ret = append(ret, urls)
	}
	return ret
}

func setString(d *bencode.Dict, key string, s *string) {
	if s != nil && *s != "" {
		d.Set(key, bencode.Bytes(*s))
	}
}

func setInt(d *bencode.Dict, key string, i *int64) {
	if i != nil {
		d.Set(key, bencode.Int(*i))
	}
}
