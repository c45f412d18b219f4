package capture

// Insert persists a single captured record
func (s *Store) Insert(record *PDURecord) error {
	return s.db.Create(record).Error
}

// InsertBatch persists a batch of captured records in one transaction
func (s *Store) InsertBatch(records []*PDURecord) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.Create(records).Error
}

// GetRecent returns the most recently captured records, newest first
func (s *Store) GetRecent(limit int) ([]PDURecord, error) {
	var records []PDURecord
	err := s.db.Order("id DESC").Limit(limit).Find(&records).Error
	return records, err
}

// GetByRNTI returns the most recent records for a given RNTI, newest first
func (s *Store) GetByRNTI(rnti uint16, limit int) ([]PDURecord, error) {
	var records []PDURecord
	err := s.db.Where("rnti = ?", rnti).Order("id DESC").Limit(limit).Find(&records).Error
	return records, err
}

// GetByChannel returns the most recent records for a logical channel, newest first
func (s *Store) GetByChannel(channel string, limit int) ([]PDURecord, error) {
	var records []PDURecord
	err := s.db.Where("channel = ?", channel).Order("id DESC").Limit(limit).Find(&records).Error
	return records, err
}

// Count returns the total number of captured records
func (s *Store) Count() (int64, error) {
	var count int64
	err := s.db.Model(&PDURecord{}).Count(&count).Error
	return count, err
}

// CountByDirection returns the number of captured records per direction
func (s *Store) CountByDirection(direction string) (int64, error) {
	var count int64
	err := s.db.Model(&PDURecord{}).Where("direction = ?", direction).Count(&count).Error
	return count, err
}
