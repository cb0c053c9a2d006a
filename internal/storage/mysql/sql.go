package mysql

// ---------------------------------------------------------------------------
// PROVIDER ROOTS
// ---------------------------------------------------------------------------

const insertHostelSQL = `
INSERT INTO hostels
  (owner_id, name, description, address, city, state, pincode, hostel_type, lat, lon, is_verified, is_active)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Counters are owned by the recount path; a root update never touches them.
const updateHostelSQL = `
UPDATE hostels SET
  name        = ?,
  description = ?,
  address     = ?,
  city        = ?,
  state       = ?,
  pincode     = ?,
  hostel_type = ?,
  lat         = ?,
  lon         = ?,
  updated_at  = CURRENT_TIMESTAMP
WHERE id = ?
`

const insertHomeSQL = `
INSERT INTO homes
  (owner_id, name, description, address, city, state, pincode, lat, lon, is_verified)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateHomeSQL = `
UPDATE homes SET
  name        = ?,
  description = ?,
  address     = ?,
  city        = ?,
  state       = ?,
  pincode     = ?,
  lat         = ?,
  lon         = ?,
  updated_at  = CURRENT_TIMESTAMP
WHERE id = ?
`

const lockHostelSQL = `SELECT owner_id FROM hostels WHERE id = ? FOR UPDATE`
const lockHomeSQL = `SELECT owner_id FROM homes WHERE id = ? FOR UPDATE`

const hostelExistsSQL = `SELECT EXISTS(SELECT 1 FROM hostels WHERE id = ?)`
const homeExistsSQL = `SELECT EXISTS(SELECT 1 FROM homes WHERE id = ?)`

// ---------------------------------------------------------------------------
// AGGREGATE RECOUNT
// ---------------------------------------------------------------------------

const countRoomsSQL = `
SELECT COUNT(*), COALESCE(SUM(is_available), 0)
FROM rooms
WHERE hostel_id = ?
`

const setRoomCountsSQL = `
UPDATE hostels SET
  total_rooms_count     = ?,
  available_rooms_count = ?
WHERE id = ?
`

// ---------------------------------------------------------------------------
// CHILD COLLECTIONS (replace = delete-all-then-insert in one tx)
// ---------------------------------------------------------------------------

const deleteHostelFacilitiesSQL = `DELETE FROM hostel_facilities WHERE hostel_id = ?`
const insertHostelFacilitiesPrefix = `INSERT INTO hostel_facilities (hostel_id, facility_id) VALUES `

const deleteRulesSQL = `DELETE FROM hostel_rules WHERE hostel_id = ?`
const insertRulesPrefix = `INSERT INTO hostel_rules (hostel_id, title, description, rule_type, is_active) VALUES `

const insertRoomSQL = `
INSERT INTO rooms
  (hostel_id, room_number, room_type, is_available, capacity, daily_price, monthly_price, description)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

const deleteRoomsSQL = `DELETE FROM rooms WHERE hostel_id = ?`
const roomHostelSQL = `SELECT hostel_id FROM rooms WHERE id = ?`

const deleteRoomFacilitiesSQL = `DELETE FROM room_facilities WHERE room_id = ?`
const insertRoomFacilitiesPrefix = `INSERT INTO room_facilities (room_id, facility_id) VALUES `

// ---------------------------------------------------------------------------
// IMAGES
// ---------------------------------------------------------------------------

const insertHostelImageSQL = `
INSERT INTO hostel_images (hostel_id, url, caption, is_cover, position) VALUES (?, ?, ?, ?, ?)
`
const clearHostelCoversSQL = `UPDATE hostel_images SET is_cover = 0 WHERE hostel_id = ? AND is_cover = 1`
const hostelImageURLsSQL = `SELECT url FROM hostel_images WHERE hostel_id = ?`
const deleteHostelImagesSQL = `DELETE FROM hostel_images WHERE hostel_id = ?`

const insertRoomImageSQL = `
INSERT INTO room_images (room_id, url, caption, is_cover, position) VALUES (?, ?, ?, ?, ?)
`
const clearRoomCoversSQL = `UPDATE room_images SET is_cover = 0 WHERE room_id = ? AND is_cover = 1`

const roomImageURLsByHostelSQL = `
SELECT ri.url
FROM room_images ri
JOIN rooms r ON r.id = ri.room_id
WHERE r.hostel_id = ?
`

const insertHomeImageSQL = `
INSERT INTO home_images (home_id, url, caption, position) VALUES (?, ?, ?, ?)
`
const homeImageURLsSQL = `SELECT url FROM home_images WHERE home_id = ?`
const deleteHomeImagesSQL = `DELETE FROM home_images WHERE home_id = ?`

const deleteHostelSQL = `DELETE FROM hostels WHERE id = ?`
const deleteHomeSQL = `DELETE FROM homes WHERE id = ?`

// ---------------------------------------------------------------------------
// POLYMORPHIC ASSOCIATIONS
// The (provider_kind, provider_id) pair is not a native foreign key; every
// delete path here is the explicit cascade.
// ---------------------------------------------------------------------------

const deleteMenuSQL = `DELETE FROM menu_entries WHERE provider_kind = ? AND provider_id = ?`
const menuImageURLsSQL = `
SELECT breakfast_image FROM menu_entries
 WHERE provider_kind = ? AND provider_id = ? AND breakfast_image IS NOT NULL
UNION ALL
SELECT lunch_image FROM menu_entries
 WHERE provider_kind = ? AND provider_id = ? AND lunch_image IS NOT NULL
UNION ALL
SELECT dinner_image FROM menu_entries
 WHERE provider_kind = ? AND provider_id = ? AND dinner_image IS NOT NULL`
const insertMenuPrefix = `INSERT INTO menu_entries
  (provider_kind, provider_id, day,
   veg_breakfast, veg_breakfast_accompaniment, veg_lunch, veg_lunch_accompaniment,
   veg_dinner, veg_dinner_accompaniment,
   nonveg_breakfast, nonveg_breakfast_accompaniment, nonveg_lunch, nonveg_lunch_accompaniment,
   nonveg_dinner, nonveg_dinner_accompaniment,
   breakfast_image, lunch_image, dinner_image)
VALUES `

const deleteMealPlansSQL = `DELETE FROM meal_plans WHERE provider_kind = ? AND provider_id = ?`
const insertMealPlansPrefix = `INSERT INTO meal_plans
  (provider_kind, provider_id, plan_id, name, price, meals, features)
VALUES `

const deleteDeliveryAreasSQL = `DELETE FROM delivery_areas WHERE provider_kind = ? AND provider_id = ?`
const insertDeliveryAreasPrefix = `INSERT INTO delivery_areas (provider_kind, provider_id, area_name) VALUES `

const deleteFeaturesSQL = `DELETE FROM provider_features WHERE provider_kind = ? AND provider_id = ?`
const insertFeaturesPrefix = `INSERT INTO provider_features
  (provider_kind, provider_id, icon, title, description)
VALUES `

// ---------------------------------------------------------------------------
// READ QUERIES
// ---------------------------------------------------------------------------

const getHostelSQL = `
SELECT id, owner_id, name, description, address, city, state, pincode, hostel_type,
       lat, lon, is_verified, is_active, total_rooms_count, available_rooms_count,
       created_at, updated_at
FROM hostels
WHERE id = ?
`

const getHomeSQL = `
SELECT id, owner_id, name, description, address, city, state, pincode,
       lat, lon, is_verified, created_at, updated_at
FROM homes
WHERE id = ?
`

const listHostelsSQL = `
SELECT h.id, h.name, h.city, h.state, h.is_verified,
       h.total_rooms_count, h.available_rooms_count,
       (SELECT i.url FROM hostel_images i WHERE i.hostel_id = h.id AND i.is_cover = 1 LIMIT 1)
FROM hostels h
WHERE h.is_active = 1
ORDER BY h.created_at DESC, h.id DESC
`

const listHomesSQL = `
SELECT m.id, m.name, m.city, m.state, m.is_verified,
       (SELECT i.url FROM home_images i WHERE i.home_id = m.id ORDER BY i.id LIMIT 1)
FROM homes m
WHERE m.is_verified = 1
ORDER BY m.created_at DESC, m.id DESC
`

const listFacilitiesSQL = `
SELECT id, name, slug FROM facilities WHERE is_active = 1 ORDER BY name
`

const hostelFacilitiesSQL = `
SELECT f.id, f.name, f.slug
FROM hostel_facilities hf
JOIN facilities f ON f.id = hf.facility_id
WHERE hf.hostel_id = ?
ORDER BY f.name
`

const hostelRulesSQL = `
SELECT id, title, description, rule_type, is_active
FROM hostel_rules
WHERE hostel_id = ?
ORDER BY rule_type, title
`

const hostelRoomsSQL = `
SELECT id, hostel_id, room_number, room_type, is_available, capacity,
       daily_price, monthly_price, COALESCE(description, '')
FROM rooms
WHERE hostel_id = ?
ORDER BY room_number
`

const roomFacilitiesByHostelSQL = `
SELECT rf.room_id, f.id, f.name, f.slug
FROM room_facilities rf
JOIN rooms r ON r.id = rf.room_id
JOIN facilities f ON f.id = rf.facility_id
WHERE r.hostel_id = ?
ORDER BY rf.room_id, f.name
`

const roomImagesByHostelSQL = `
SELECT ri.room_id, ri.id, ri.url, ri.caption, ri.is_cover, ri.position
FROM room_images ri
JOIN rooms r ON r.id = ri.room_id
WHERE r.hostel_id = ?
ORDER BY ri.room_id, ri.position, ri.id
`

const hostelImagesSQL = `
SELECT id, url, caption, is_cover, position
FROM hostel_images
WHERE hostel_id = ?
ORDER BY position, id
`

const homeImagesSQL = `
SELECT id, url, caption, 0, position
FROM home_images
WHERE home_id = ?
ORDER BY position, id
`

const menuByProviderSQL = `
SELECT id, day,
       COALESCE(veg_breakfast,''), COALESCE(veg_breakfast_accompaniment,''),
       COALESCE(veg_lunch,''), COALESCE(veg_lunch_accompaniment,''),
       COALESCE(veg_dinner,''), COALESCE(veg_dinner_accompaniment,''),
       COALESCE(nonveg_breakfast,''), COALESCE(nonveg_breakfast_accompaniment,''),
       COALESCE(nonveg_lunch,''), COALESCE(nonveg_lunch_accompaniment,''),
       COALESCE(nonveg_dinner,''), COALESCE(nonveg_dinner_accompaniment,''),
       COALESCE(breakfast_image,''), COALESCE(lunch_image,''), COALESCE(dinner_image,'')
FROM menu_entries
WHERE provider_kind = ? AND provider_id = ?
ORDER BY FIELD(day, 'monday','tuesday','wednesday','thursday','friday','saturday','sunday')
`

const mealPlansByProviderSQL = `
SELECT id, plan_id, name, price, meals, features
FROM meal_plans
WHERE provider_kind = ? AND provider_id = ?
ORDER BY name
`

const deliveryAreasByProviderSQL = `
SELECT id, area_name
FROM delivery_areas
WHERE provider_kind = ? AND provider_id = ?
ORDER BY area_name
`

const featuresByProviderSQL = `
SELECT id, COALESCE(icon,''), title, COALESCE(description,'')
FROM provider_features
WHERE provider_kind = ? AND provider_id = ?
ORDER BY title
`

const searchHostelsSQL = `
SELECT id, name, city, description
FROM hostels
WHERE is_active = 1 AND (name LIKE ? OR city LIKE ?)
ORDER BY name
LIMIT ?
`

const searchHomesSQL = `
SELECT id, name, city, description
FROM homes
WHERE is_verified = 1 AND (name LIKE ? OR city LIKE ?)
ORDER BY name
LIMIT ?
`

const listHostelIDsSQL = `SELECT id FROM hostels ORDER BY id`
